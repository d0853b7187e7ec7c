package models

// Evaluation is the end-of-session verdict on the user's teaching.
type Evaluation struct {
	Score             int      `json:"score"`
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
	MissedConcepts    []string `json:"missed_concepts,omitempty"`
	Suggestions       []string `json:"suggestions"`
	FollowUpQuestions []string `json:"follow_up_questions"`
}

// ScoreTier groups scores for presentation.
type ScoreTier string

const (
	TierSuccess     ScoreTier = "success"
	TierAccent      ScoreTier = "accent"
	TierDestructive ScoreTier = "destructive"
)

// Clone returns a deep copy so callers cannot alias the stored lists.
func (e Evaluation) Clone() Evaluation {
	return Evaluation{
		Score:             e.Score,
		Strengths:         cloneStrings(e.Strengths),
		Weaknesses:        cloneStrings(e.Weaknesses),
		MissedConcepts:    cloneStrings(e.MissedConcepts),
		Suggestions:       cloneStrings(e.Suggestions),
		FollowUpQuestions: cloneStrings(e.FollowUpQuestions),
	}
}

// Tier reports the colour band of the score.
func (e Evaluation) Tier() ScoreTier {
	switch {
	case e.Score >= 80:
		return TierSuccess
	case e.Score >= 60:
		return TierAccent
	default:
		return TierDestructive
	}
}

// Label returns the headline shown under the score.
func (e Evaluation) Label() string {
	switch {
	case e.Score >= 90:
		return "Excellent!"
	case e.Score >= 80:
		return "Great Job!"
	case e.Score >= 70:
		return "Good Work!"
	case e.Score >= 60:
		return "Nice Try!"
	default:
		return "Keep Practicing!"
	}
}

// Stars converts the score into a five star rating.
func (e Evaluation) Stars() int {
	stars := e.Score / 20
	if stars < 0 {
		return 0
	}
	if stars > 5 {
		return 5
	}
	return stars
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
