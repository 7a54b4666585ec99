package bot

import (
	"fmt"
	"strings"

	"github.com/nbenali/campusbot-go/internal/session"
)

// UI strings shown before a language is known are trilingual: Arabic,
// French, then English.
const (
	msgWelcome = "مرحباً بك في مساعد الجامعة!\n" +
		"Bienvenue sur l'assistant universitaire !\n" +
		"Welcome to the university help desk!"

	msgRestarted = "تمت إعادة تعيين جلستك.\n" +
		"Votre session a été réinitialisée.\n" +
		"Your session has been reset."

	msgChooseInstitution = "اختر مؤسستك:\n" +
		"Choisissez votre établissement :\n" +
		"Choose your institution:"

	msgChooseSubUnit = "اختر الكلية أو المعهد:\n" +
		"Choisissez votre faculté ou institut :\n" +
		"Choose your faculty or institute:"

	msgChooseDepartment = "اختر قسمك (أو تخطَّ هذه الخطوة):\n" +
		"Choisissez votre département (ou passez cette étape) :\n" +
		"Choose your department (or skip this step):"

	msgSelectionFirst = "يرجى إكمال اختيار مؤسستك أولاً.\n" +
		"Veuillez d'abord terminer la sélection de votre établissement.\n" +
		"Please finish selecting your institution first."

	msgSkipLabel = "تخطّ / Passer / Skip"

	msgInvalidAction = "هذا الاختيار لم يعد صالحاً. استخدم /restart للبدء من جديد.\n" +
		"Cette sélection n'est plus valide. Utilisez /restart pour recommencer.\n" +
		"That choice is no longer valid. Use /restart to start over."

	msgRateLimited = "لقد أرسلت أسئلة كثيرة، يرجى الانتظار قليلاً.\n" +
		"Vous avez envoyé trop de questions, patientez un instant.\n" +
		"You have asked too many questions, please wait a moment."

	msgReady = "تم! يمكنك الآن طرح أسئلتك بالعربية أو الفرنسية أو الإنجليزية.\n" +
		"C'est fait ! Vous pouvez maintenant poser vos questions en arabe, français ou anglais.\n" +
		"All set! You can now ask your questions in Arabic, French, or English."

	msgHelp = "الأوامر المتاحة / Commandes disponibles / Available commands:\n" +
		"/start – بدء / démarrer / get started\n" +
		"/status – حالة الجلسة / état de la session / session status\n" +
		"/restart – إعادة التعيين / réinitialiser / reset the selection\n" +
		"/help – المساعدة / aide / this message\n\n" +
		"بعد اختيار مؤسستك يمكنك طرح أي سؤال حول التسجيل، الرسوم، السكن، المكتبة وغيرها.\n" +
		"Après avoir choisi votre établissement, posez vos questions sur l'inscription, les frais, le logement, la bibliothèque...\n" +
		"After picking your institution, ask anything about registration, tuition, housing, the library, and more."
)

// readyText confirms a completed selection.
func readyText(s *session.Session) string {
	return msgReady + "\n\n" + s.Summary()
}

// statusText renders the session for /status.
func statusText(s *session.Session) string {
	var b strings.Builder
	b.WriteString(s.Summary())
	fmt.Fprintf(&b, "\n%d turns in history", len(s.History))
	return b.String()
}
