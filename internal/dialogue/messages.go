package dialogue

import "github.com/nbenali/campusbot-go/internal/lang"

// Canned replies for paths where no answer could be produced. Keys
// cover every value lang.Detect can return.
var (
	apologyMessage = map[lang.Language]string{
		lang.Arabic:  "عذراً، حدث خطأ أثناء معالجة سؤالك. يرجى المحاولة مرة أخرى بعد قليل.",
		lang.French:  "Désolé, une erreur s'est produite lors du traitement de votre question. Veuillez réessayer dans un instant.",
		lang.English: "Sorry, something went wrong while processing your question. Please try again in a moment.",
	}

	noAnswerMessage = map[lang.Language]string{
		lang.Arabic:  "عذراً، لم أجد إجابة على سؤالك. يرجى التواصل مع إدارة الجامعة للمساعدة.",
		lang.French:  "Désolé, je n'ai pas trouvé de réponse à votre question. Veuillez contacter l'administration de votre université.",
		lang.English: "Sorry, I could not find an answer to your question. Please contact your university's administration office.",
	}
)
