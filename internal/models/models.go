package models

// Message is one entry of a conversation transcript. Every field is optional.
type Message struct {
	Role        string `json:"role,omitempty"`
	Content     string `json:"content,omitempty"`
	Type        string `json:"type,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
	BeforeCode  string `json:"before_code,omitempty"`
	AfterCode   string `json:"after_code,omitempty"`
	CodeChanges string `json:"code_changes,omitempty"`
}

// RawRecord is a conversation summary as written by the chat logger.
// Producers disagree on field names, so alternates are kept side by side
// and resolved by the normalizer.
type RawRecord struct {
	ConversationID  string    `json:"conversation_id,omitempty"`
	ID              string    `json:"id,omitempty"`
	ProjectName     string    `json:"project_name,omitempty"`
	ProjectNameAlt  string    `json:"projectName,omitempty"`
	Title           string    `json:"title,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	Description     string    `json:"description,omitempty"`
	Tag             string    `json:"tag,omitempty"`
	CreatedAt       string    `json:"created_at,omitempty"`
	UpdatedAt       string    `json:"updated_at,omitempty"`
	Timestamp       string    `json:"timestamp,omitempty"`
	AIModel         string    `json:"ai_model,omitempty"`
	BeforeCode      string    `json:"before_code,omitempty"`
	AfterCode       string    `json:"after_code,omitempty"`
	MessageCount    int       `json:"message_count,omitempty"`
	MessageCountAlt int       `json:"messageCount,omitempty"`
	Participants    []string  `json:"participants,omitempty"`
	FilesMentioned  []string  `json:"files_mentioned,omitempty"`
	CodeBlocks      int       `json:"code_blocks_found,omitempty"`
	Messages        []Message `json:"messages,omitempty"`
}

// NormalizedProject is the canonical project update derived from one RawRecord.
type NormalizedProject struct {
	ID           string    `json:"id"`
	ProjectName  string    `json:"projectName"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	Type         string    `json:"type"`
	Timestamp    string    `json:"timestamp"`
	AIModel      string    `json:"aiModel"`
	Functions    []string  `json:"functions"`
	BugFixes     []string  `json:"bugFixes"`
	Tags         []string  `json:"tags"`
	CodeChanges  string    `json:"codeChanges"`
	BeforeCode   *string   `json:"before_code"`
	AfterCode    *string   `json:"after_code"`
	Impact       string    `json:"impact"`
	MessageCount int       `json:"messageCount"`
	Participants []string  `json:"participants"`
	Messages     []Message `json:"messages"`
}

// ProjectInfo is one row of the project roster.
type ProjectInfo struct {
	Name    string `json:"name"`
	Updates int    `json:"updates"`
	Status  string `json:"status"`
}

// RawDataset is the document served by the feed endpoint.
type RawDataset struct {
	Projects         []ProjectInfo `json:"projects"`
	ProjectSummaries []RawRecord   `json:"projectSummaries"`
}

// Dataset is a RawDataset after normalization.
type Dataset struct {
	Projects         []ProjectInfo        `json:"projects"`
	ProjectSummaries []*NormalizedProject `json:"projectSummaries"`
}

// TimestampLayout is the ISO-8601 form used for generated timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Project types. Every NormalizedProject carries exactly one of these.
const (
	TypeFeature    = "Feature Development"
	TypeSecurity   = "Security Update"
	TypeDiscussion = "Discussion"
	TypeOther      = "Other"
)

// ProjectTypes lists the fixed type enumeration in display order.
var ProjectTypes = []string{TypeFeature, TypeSecurity, TypeDiscussion, TypeOther}

// IsProjectType reports whether t belongs to the type enumeration.
func IsProjectType(t string) bool {
	for _, known := range ProjectTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ChatLog is one archived conversation as listed by the archive.
type ChatLog struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	ProjectName    string `json:"project_name"`
	Tag            string `json:"tag"`
	Title          string `json:"title"`
	Summary        string `json:"summary"`
	MessageCount   int    `json:"message_count"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}
