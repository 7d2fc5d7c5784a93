package domain

// Phrases are the canned texts used by the simulated remote parties.
type Phrases []string

type CallDirection string

const (
	CallIncoming CallDirection = "incoming"
	CallOutgoing CallDirection = "outgoing"
)

// CallRecord is a row of the call history panel.
type CallRecord struct {
	Name      string
	Direction CallDirection
	Time      string
	Duration  string
	Answered  bool
}

// Group is a row of the groups panel.
type Group struct {
	Name        string
	Members     int
	LastMessage string
	Unread      int
}

type Profile struct {
	Name     string
	About    string
	Phone    string
	Username string
}

type SettingsEntry struct {
	Title    string
	Subtitle string
}

// Panels holds the read-only data shown by the non-message sections.
type Panels struct {
	Calls    []CallRecord
	Groups   []Group
	Profile  Profile
	Settings []SettingsEntry
}
