package catalog

import "github.com/justestif/go-emotion-player/internal/mood"

const (
	coverHappy     = "https://images.pexels.com/photos/1105666/pexels-photo-1105666.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=2"
	coverSad       = "https://images.pexels.com/photos/561463/pexels-photo-561463.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=2"
	coverAngry     = "https://images.pexels.com/photos/1540406/pexels-photo-1540406.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=2"
	coverSurprised = "https://images.pexels.com/photos/3807743/pexels-photo-3807743.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=2"
	coverNeutral   = "https://images.pexels.com/photos/1231230/pexels-photo-1231230.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=2"
)

// Default returns the built-in catalog served when no catalog file or
// database is configured.
func Default() *Catalog {
	return MustNew(map[mood.Mood][]Track{
		mood.Happy: {
			{ID: "happy-1", Title: "Dil Dhadakne Do", Artist: "Pritam", Mood: mood.Happy, Path: "/music/happy/Dil Dhadakne Do.mp3", Cover: coverHappy},
			{ID: "happy-2", Title: "Mera Mann Kehne Laga", Artist: "Pritam", Mood: mood.Happy, Path: "/music/happy/Mera Mann Kehne Laga.mp3", Cover: coverHappy},
			{ID: "happy-3", Title: "Kabhi Kabhi Aditi", Artist: "Pritam", Mood: mood.Happy, Path: "/music/happy/Kabhi Kabhi Aditi.mp3", Cover: coverHappy},
		},
		mood.Sad: {
			{ID: "sad-1", Title: "Maan Jao", Artist: "Pritam", Mood: mood.Sad, Path: "/music/sad/Maan Jao.mp3", Cover: coverSad},
			{ID: "sad-2", Title: "Maand", Artist: "Pritam", Mood: mood.Sad, Path: "/music/sad/Maand.mp3", Cover: coverSad},
			{ID: "sad-3", Title: "Jhol", Artist: "Pritam", Mood: mood.Sad, Path: "/music/sad/Jhol.mp3", Cover: coverSad},
		},
		mood.Angry: {
			{ID: "angry-1", Title: "Jee Karda", Artist: "Pritam", Mood: mood.Angry, Path: "/music/angry/Jee Karda.mp3", Cover: coverAngry},
			{ID: "angry-2", Title: "Brothers Anthem", Artist: "Pritam", Mood: mood.Angry, Path: "/music/angry/Brothers Anthem.mp3", Cover: coverAngry},
			{ID: "angry-3", Title: "Saadda Haq", Artist: "Pritam", Mood: mood.Angry, Path: "/music/angry/Saadda Haq.mp3", Cover: coverAngry},
		},
		mood.Surprised: {
			{ID: "surprised-1", Title: "Blinding Lights", Artist: "The Weeknd", Mood: mood.Surprised, Path: "/music/surprised/Blinding Lights.mp3", Cover: coverSurprised},
			{ID: "surprised-2", Title: "One Dance", Artist: "Drake", Mood: mood.Surprised, Path: "/music/surprised/One Dance.mp3", Cover: coverSurprised},
			{ID: "surprised-3", Title: "Counting Stars", Artist: "OneRepublic", Mood: mood.Surprised, Path: "/music/surprised/Counting Stars.mp3", Cover: coverSurprised},
		},
		mood.Neutral: {
			{ID: "neutral-1", Title: "Winning Speech", Artist: "Karan Aujla", Mood: mood.Neutral, Path: "/music/neutral/Winning Speech - Karan Aujla.mp3", Cover: "https://i.scdn.co/image/ab67616d0000b273bb0a8916e30754d2e08f28bb"},
			{ID: "neutral-2", Title: "ANTIDOTE", Artist: "Karan Aujla", Mood: mood.Neutral, Path: "/music/neutral/ANTIDOTE - Karan Aujla.mp3", Cover: coverNeutral},
			{ID: "neutral-3", Title: "Wavy", Artist: "Karan Aujla", Mood: mood.Neutral, Path: "/music/neutral/Wavy - Karan Aujla.mp3", Cover: coverNeutral},
		},
	})
}
