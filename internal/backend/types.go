package backend

// Message is a single prompt sent to a backend.
type Message struct {
	Content string
	Role    string // "user" or "system"
}

// Response is the raw text a backend produced for a Message.
type Response struct {
	Content string
	Model   string
}

// Config selects and configures a backend.
type Config struct {
	Type         string // "gemini" or "claude"
	APIKey       string // required by gemini
	Model        string
	Command      string // CLI binary for subprocess backends
	WorkDir      string
	SystemPrompt string
}
