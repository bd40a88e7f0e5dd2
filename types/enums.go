package types

type ChatAction string

const (
	ChatActionTyping      ChatAction = "typing"
	ChatActionUploadAudio ChatAction = "upload_audio"
)

// Member statuses that pass the channel gate.
const (
	StatusMember        string = "member"
	StatusAdministrator string = "administrator"
	StatusCreator       string = "creator"
)

type Flow string

const (
	FlowNone             Flow = ""
	FlowAdmin            Flow = "admin"
	FlowStart            Flow = "start"
	FlowSearch           Flow = "search"
	FlowLinkDownload     Flow = "link_download"
	FlowCallbackDownload Flow = "callback_download"
	FlowMembershipVerify Flow = "membership_verify"
)

type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeDenied      Outcome = "denied"
	OutcomeRateLimited Outcome = "rate_limited"
	OutcomeNoResults   Outcome = "no_results"
	OutcomeFailed      Outcome = "failed"
	OutcomeFallback    Outcome = "fallback"
	OutcomeIgnored     Outcome = "ignored"
)
