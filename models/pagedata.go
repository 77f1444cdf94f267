package models

type LoginPageData struct {
	DemoEmail   string
	Email       string
	RememberMe  bool
	FieldErrors map[string]string
	Error       string
}

type DashboardPageData struct {
	User     Identity
	Initials string
}
