package lexicon

var defaultBuzzwords = []string{
	"passionate", "driven", "results-driven", "results-oriented", "self-motivated",
	"motivated", "detail-oriented", "dynamic", "innovative", "innovation",
	"synergy", "synergies", "synergistic", "leverage", "leveraged", "leveraging",
	"paradigm", "holistic", "proactive", "visionary", "seamless", "seamlessly",
	"robust", "cutting-edge", "best-in-class", "world-class", "game-changing",
	"spearheaded", "orchestrated", "streamlined", "transformative", "impactful",
	"empowered", "empowering", "go-getter", "value-add", "thought-leader",
	"team player", "holistic approach", "proven track record", "track record",
	"fast-paced environment", "think outside the box", "out of the box",
	"move the needle", "deep dive", "best practices", "cross-functional",
}

var defaultAdjectives = []string{
	"dynamic", "innovative", "passionate", "motivated", "dedicated", "exceptional",
	"outstanding", "excellent", "proven", "strategic", "creative", "strong",
	"extensive", "diverse", "comprehensive", "robust", "seamless", "meticulous",
	"versatile", "resourceful", "proactive", "collaborative", "visionary",
	"exemplary", "remarkable", "impactful", "transformative",
}

var defaultTransitions = []string{
	"furthermore", "moreover", "additionally", "in addition", "consequently",
	"therefore", "thus", "hence", "nevertheless", "notably", "importantly",
	"ultimately", "in conclusion", "as a result", "subsequently", "in summary",
	"to summarize", "on the other hand", "accordingly", "indeed",
	"in today's", "it is worth noting",
}

// DefaultWeights are the rule-based scorer weights
var DefaultWeights = Weights{
	RepetitiveStructures: 0.25,
	PerfectGrammar:       0.20,
	BuzzwordDensity:      0.20,
	SentenceUniformity:   0.20,
	TransitionOveruse:    0.15,
}

// DefaultThresholds are the confidence bucket boundaries shared by both tracks
var DefaultThresholds = Thresholds{
	Moderate: 40,
	High:     70,
}
