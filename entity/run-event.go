package entity

const (
	EventRunStatus    = "run_status"
	EventFunctionCall = "function_call"
	EventReply        = "reply"
)

type RunEvent struct {
	Type     string `json:"type"`
	UserId   string `json:"user_id,omitempty"`
	ThreadId string `json:"thread_id,omitempty"`
	RunId    string `json:"run_id,omitempty"`
	Status   string `json:"status,omitempty"`
	Function string `json:"function,omitempty"`
	Text     string `json:"text,omitempty"`
}
