package profile

// Profile captures the assistant identity exposed to the chat widget.
type Profile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Greeting     string `json:"greeting,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// Seed provides the default assistant profile used when no on-chain
// configuration has been published for the account.
func Seed() []Profile {
	return []Profile{
		{
			ID:       "default",
			Name:     "Profile Assistant",
			Greeting: "Hi! Ask me anything about this profile.",
			Instructions: "You are a helpful assistant bound to the owner's public profile. " +
				"Answer questions about the profile and its assets concisely and politely.",
		},
	}
}
