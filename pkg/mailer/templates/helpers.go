package templates

// Brand carries the links and names shared by every email.
type Brand struct {
	AppName        string
	CompanyName    string
	LogoURL        string
	SupportURL     string
	UnsubscribeURL string
	DashboardURL   string
}

// Option pattern
type Option func(*EmailData)

func WithChallenge(year, goal, completed int) Option {
	return func(d *EmailData) {
		d.Year = year
		d.Goal = goal
		d.Completed = completed
	}
}

func WithLastTitle(title string) Option { return func(d *EmailData) { d.LastTitle = title } }

// NewBaseEmailData fills brand fields, then applies opts.
func NewBaseEmailData(b Brand, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:  name,
		Email: email,
		Type:  typ,

		AppName:        b.AppName,
		CompanyName:    b.CompanyName,
		LogoURL:        b.LogoURL,
		SupportURL:     b.SupportURL,
		UnsubscribeURL: b.UnsubscribeURL,
		DashboardURL:   b.DashboardURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(b Brand, name, email string) map[string]any {
	return ToMap(NewBaseEmailData(b, Welcome, name, email))
}

func NewChallengeCompletedData(b Brand, name, email string, year, goal, completed int, lastTitle string) map[string]any {
	d := NewBaseEmailData(b, ChallengeCompleted, name, email,
		WithChallenge(year, goal, completed), WithLastTitle(lastTitle))
	return ToMap(d)
}
