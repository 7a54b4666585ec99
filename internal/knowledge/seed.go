package knowledge

import (
	"context"
	"fmt"
)

// SeedDefaults loads a starter set of snippets for each institution so
// generative replies have grounding material on a fresh database. Real
// deployments replace this with institution-specific content.
func (s *Store) SeedDefaults(ctx context.Context, institutionIDs []int64) error {
	type snippetSeed struct {
		title, content, language string
	}

	seeds := []snippetSeed{
		{
			title:    "Course registration",
			content:  "Course registration opens during the first two weeks of each semester. Students register online through the university portal using their student ID and enrollment PIN. Late registration requires approval from the department head.",
			language: "en",
		},
		{
			title:    "Inscription aux cours",
			content:  "Les inscriptions pédagogiques se déroulent pendant les deux premières semaines de chaque semestre via le portail de l'université. Une inscription tardive nécessite l'accord du chef de département.",
			language: "fr",
		},
		{
			title:    "التسجيل في المقررات",
			content:  "يفتح التسجيل في المقررات خلال الأسبوعين الأولين من كل سداسي عبر بوابة الجامعة الإلكترونية. يتطلب التسجيل المتأخر موافقة رئيس القسم.",
			language: "ar",
		},
		{
			title:    "Library hours",
			content:  "The central library is open Sunday through Thursday from 8:00 to 18:00. A valid student card is required to borrow books. Up to three books may be borrowed for two weeks at a time.",
			language: "en",
		},
		{
			title:    "Bourses et aides",
			content:  "Les demandes de bourse sont déposées auprès du service des œuvres universitaires avant la fin du premier mois du semestre. Le dossier comprend le certificat de scolarité et une attestation de revenus.",
			language: "fr",
		},
		{
			title:    "كشف النقاط والشهادات",
			content:  "تُطلب كشوف النقاط وشهادات التسجيل من مصلحة التمدرس التابعة للكلية. تُسلَّم الوثائق عادة في ظرف ثلاثة أيام عمل.",
			language: "ar",
		},
		{
			title:    "Transcripts and certificates",
			content:  "Transcripts and enrollment certificates are requested from the faculty registrar office. Documents are usually ready within three working days and must be collected in person with a student card.",
			language: "en",
		},
	}

	for _, instID := range institutionIDs {
		for _, seed := range seeds {
			if _, err := s.SaveSnippet(ctx, &Snippet{
				InstitutionID: instID,
				Title:         seed.title,
				Content:       seed.content,
				Language:      seed.language,
			}); err != nil {
				return fmt.Errorf("seed snippet %q: %w", seed.title, err)
			}
		}
	}

	return nil
}
