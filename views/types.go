package views

// Invite is a generated invite as listed on the admin dashboard.
type Invite struct {
	ID          string
	Theme       string
	ChildName   string
	Age         string
	Date        string
	Time        string
	Venue       string
	ImageURL    string // empty when the image was only returned inline
	Durable     bool
	Width       int
	Height      int
	GeneratedAt string // RFC3339
}
