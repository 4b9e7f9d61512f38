package flow

// Outcome tells the presentation layer what to render after an event.
type Outcome string

const (
	// OutcomeNone accompanies errors; nothing specific to render.
	OutcomeNone Outcome = ""
	// OutcomeMenu means the user was returned to the main menu.
	OutcomeMenu Outcome = "menu"
	// OutcomeCancelled means an in-flight submission was abandoned.
	OutcomeCancelled Outcome = "cancelled"
	// OutcomeCooldown means the 12-hour window has not elapsed yet.
	OutcomeCooldown Outcome = "cooldown"
	// OutcomePromptContent asks the user for the submission body.
	OutcomePromptContent Outcome = "prompt_content"
	// OutcomePromptContact asks the user for the contact string.
	OutcomePromptContact Outcome = "prompt_contact"
	// OutcomePublished confirms the submission reached the channel.
	OutcomePublished Outcome = "published"
	// OutcomeUnsupported asks the user to send text or a photo.
	OutcomeUnsupported Outcome = "unsupported"
	// OutcomeIgnored means the event does not apply to the current state.
	OutcomeIgnored Outcome = "ignored"
)
