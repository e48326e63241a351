package squad

import "github.com/yourusername/fplpanel/internal/models"

// FromPredictions turns scored evaluation rows into candidates
func FromPredictions(preds []models.Prediction) []Candidate {
	out := make([]Candidate, 0, len(preds))
	for _, p := range preds {
		score := p.Predicted
		out = append(out, Candidate{
			PlayerKey: p.PlayerKey,
			FullName:  p.FullName,
			Position:  p.Position,
			Team:      p.Team,
			Price:     p.Price,
			Score:     &score,
		})
	}
	return out
}
