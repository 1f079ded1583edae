package trap

import "iqai-quiz-service/internal/domain"

// FallbackPool returns the pre-authored trap questions used when the
// generator is unavailable. Each one follows the trap contract: the answer
// is one of the options, but the explanation contradicts it in a way a
// vigilant player can catch.
func FallbackPool() []domain.Question {
	return []domain.Question{
		{
			Text:        "Combien de côtés possède un hexagone ?",
			Options:     []string{"5", "6", "7", "8"},
			Answer:      "5",
			Explanation: "Un hexagone possède six côtés, comme l'indique le préfixe grec « hexa ».",
			Kind:        domain.KindTrap,
		},
		{
			Text:        "En quelle année a eu lieu la prise de la Bastille ?",
			Options:     []string{"1789", "1792", "1804", "1815"},
			Answer:      "1792",
			Explanation: "La prise de la Bastille, le 14 juillet 1789, marque le début de la Révolution française.",
			Kind:        domain.KindTrap,
		},
		{
			Text:        "Quelle est la capitale de l'Australie ?",
			Options:     []string{"Sydney", "Melbourne", "Canberra", "Perth"},
			Answer:      "Sydney",
			Explanation: "Canberra est la capitale de l'Australie depuis 1913, choisie comme compromis entre Sydney et Melbourne.",
			Kind:        domain.KindTrap,
		},
		{
			Text:        "Combien font 7 multiplié par 8 ?",
			Options:     []string{"54", "56", "58", "64"},
			Answer:      "54",
			Explanation: "7 multiplié par 8 donne 56, puisque 7 × 8 = 56.",
			Kind:        domain.KindTrap,
		},
		{
			Text:        "Quel est le plus long fleuve de France ?",
			Options:     []string{"La Seine", "Le Rhône", "La Loire", "La Garonne"},
			Answer:      "Le Rhône",
			Explanation: "La Loire, avec ses 1 006 kilomètres, est le plus long fleuve de France.",
			Kind:        domain.KindTrap,
		},
		{
			Text:        "De quel instrument joue un violoncelliste ?",
			Options:     []string{"Du violon", "De l'alto", "Du violoncelle", "De la contrebasse"},
			Answer:      "Du violon",
			Explanation: "Un violoncelliste joue du violoncelle, instrument tenu entre les jambes et posé sur une pique.",
			Kind:        domain.KindTrap,
		},
	}
}
