package models

// State tags the in-flight multi-step interaction of one chat user.
type State string

const (
	StateIdle                     State = "idle"
	StateAwaitingPassword         State = "awaiting_password"
	StateAwaitingLoginEmail       State = "awaiting_login_email"
	StateAwaitingLoginPassword    State = "awaiting_login_password"
	StateCreatingIdentity         State = "creating_identity"
	StateAwaitingIssueDescription State = "awaiting_issue_description"
)

// IdentityDraft collects the fields of the identity-creation wizard.
type IdentityDraft struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// ConversationContext lives in process memory only. A missing context is Idle.
type ConversationContext struct {
	State State `json:"state"`

	LoginEmail  string            `json:"login_email,omitempty"`
	LoginShared bool              `json:"login_shared,omitempty"`
	Draft       *IdentityDraft    `json:"draft,omitempty"`
	IssueType   IssueType         `json:"issue_type,omitempty"`
	IssueTarget *SearchResultItem `json:"issue_target,omitempty"`

	Results        []SearchResultItem `json:"results,omitempty"`
	Offset         int                `json:"offset"`
	Selected       *SearchResultItem  `json:"selected,omitempty"`
	Identities     []Identity         `json:"identities,omitempty"`
	IdentityOffset int                `json:"identity_offset"`
	MenuMessageID  int                `json:"menu_message_id,omitempty"`
}

func NewConversationContext() *ConversationContext {
	return &ConversationContext{State: StateIdle}
}

// Reset returns the primary state to Idle and drops every wizard payload.
// Search bookkeeping is orthogonal and survives.
func (c *ConversationContext) Reset() {
	c.State = StateIdle
	c.LoginEmail = ""
	c.LoginShared = false
	c.Draft = nil
	c.IssueType = 0
	c.IssueTarget = nil
}

func (c *ConversationContext) IsIdle() bool {
	return c.State == "" || c.State == StateIdle
}

// Pending reports whether losing the context would lose user progress.
func (c *ConversationContext) Pending() bool {
	return !c.IsIdle() || len(c.Results) > 0 || len(c.Identities) > 0
}

func (c *ConversationContext) BeginLogin(shared bool) {
	c.Reset()
	c.State = StateAwaitingLoginEmail
	c.LoginShared = shared
}

func (c *ConversationContext) BeginIdentity() {
	c.Reset()
	c.State = StateCreatingIdentity
	c.Draft = &IdentityDraft{}
}

func (c *ConversationContext) BeginIssue(t IssueType, target SearchResultItem) {
	c.Reset()
	c.State = StateAwaitingIssueDescription
	c.IssueType = t
	c.IssueTarget = &target
}
