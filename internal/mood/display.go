package mood

// Appearance holds presentation hints for a mood.
type Appearance struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Emoji     string `json:"emoji"`
	Message   string `json:"message"`
}

var appearances = map[Mood]Appearance{
	Happy: {
		Primary:   "#FFD700",
		Secondary: "#FFA500",
		Emoji:     "😊",
		Message:   "You seem happy! Enjoy these uplifting tracks.",
	},
	Sad: {
		Primary:   "#1E90FF",
		Secondary: "#4682B4",
		Emoji:     "😢",
		Message:   "Feeling blue? These songs might resonate with you.",
	},
	Angry: {
		Primary:   "#FF4500",
		Secondary: "#B22222",
		Emoji:     "😠",
		Message:   "Channeling that energy with some powerful music.",
	},
	Surprised: {
		Primary:   "#DA70D6",
		Secondary: "#9370DB",
		Emoji:     "😲",
		Message:   "Surprised? Here's something unexpected!",
	},
	Neutral: {
		Primary:   "#3CB371",
		Secondary: "#2E8B57",
		Emoji:     "😐",
		Message:   "Balanced and calm. Enjoy these relaxing tunes.",
	},
}

// Display returns the presentation hints for m. Unknown moods get a
// generic message and neutral colours.
func Display(m Mood) Appearance {
	if a, ok := appearances[m]; ok {
		return a
	}
	a := appearances[Neutral]
	a.Message = "Selecting music based on your mood..."
	return a
}
