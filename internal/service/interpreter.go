package service

import (
	"strings"

	"github.com/Ahmadayed22/University-Project/internal/models"
)

// Degree and system phrases produced by the interpreter. Handlers and the
// letter renderer treat these as opaque display strings.
const (
	PhraseDiplomaAndBachelor = "intermediate diploma and bachelor's degrees"
	PhraseDiplomaOnly        = "intermediate diploma degree only"
	PhraseBachelorOnly       = "bachelor's degree only"
	PhraseHigherStudies      = "higher graduate studies degree"
	PhraseAmbiguous          = "error, please pick either recognition or rejection"

	PhraseTraditional     = "traditional"
	PhraseNonConventional = "non-conventional (Online)"
)

// FullRecognitionMarker appears inside control tokens recorded by older
// committee rounds and still counts as full recognition when aggregating.
const FullRecognitionMarker = "recognition: full recognition"

// Interpret derives the rendered status of a single decision from its
// stored reason list. It is a pure function: same input, same output, no
// store access.
func Interpret(reasons []string) models.InterpretedStatus {
	var (
		diplomaRejected, diplomaRecognized   bool
		bachelorRejected, bachelorRecognized bool
		nonConventional                      bool
	)

	status := models.InterpretedStatus{}

	for _, token := range models.ParseReasons(reasons) {
		switch token.Kind {
		case models.ReasonNonConventional:
			nonConventional = true
		case models.ReasonDiplomaRejected:
			diplomaRejected = true
		case models.ReasonDiplomaRecognized:
			diplomaRecognized = true
		case models.ReasonBscRejected:
			bachelorRejected = true
		case models.ReasonBscRecognized:
			bachelorRecognized = true
		case models.ReasonHigherRejected, models.ReasonHigherRecognized:
			// Higher studies has no dedicated phrase; it is the default when
			// neither diploma nor bachelor flags fire. The verdict switch
			// below still picks up the recognized/rejected side.
		case models.ReasonControl:
			// Bookkeeping rows from the decision workflow; never rendered.
		case models.ReasonFreeText:
			status.BulletReasons = append(status.BulletReasons, token.Raw)
		}

		switch token.Kind {
		case models.ReasonDiplomaRejected, models.ReasonBscRejected, models.ReasonHigherRejected:
			status.ShowRejected = true
		case models.ReasonDiplomaRecognized, models.ReasonBscRecognized, models.ReasonHigherRecognized:
			status.ShowRecognized = true
		}
	}

	switch {
	case (diplomaRejected && bachelorRejected) || (diplomaRecognized && bachelorRecognized):
		status.DegreePhrase = PhraseDiplomaAndBachelor
	case (diplomaRejected && !bachelorRejected) || (diplomaRecognized && !bachelorRecognized):
		status.DegreePhrase = PhraseDiplomaOnly
	case (!diplomaRejected && bachelorRejected) || (!diplomaRecognized && bachelorRecognized):
		status.DegreePhrase = PhraseBachelorOnly
	default:
		status.DegreePhrase = PhraseHigherStudies
	}

	if nonConventional {
		status.SystemPhrase = PhraseNonConventional
	} else {
		status.SystemPhrase = PhraseTraditional
	}

	// A decision that claims both outcomes (or neither) cannot be read as a
	// verdict. Surface it as a named ambiguous state rendered on the rejected
	// side rather than guessing.
	if status.ShowRecognized == status.ShowRejected {
		status.DegreePhrase = PhraseAmbiguous
		status.ShowRecognized = false
		status.ShowRejected = true
		status.Ambiguous = true
	}

	return status
}

// arabicPhrases maps every interpreter-produced phrase to its Arabic
// rendering. Free-text bullets are committee prose and stay untranslated.
var arabicPhrases = map[string]string{
	PhraseHigherStudies:      "درجة الدراسات العليا",
	PhraseDiplomaAndBachelor: "درجتي الدبلوم المتوسط والبكالوريوس",
	PhraseDiplomaOnly:        "درجة الدبلوم المتوسط فقط",
	PhraseBachelorOnly:       "درجة البكالوريوس فقط",
	PhraseAmbiguous:          "خطأ، يرجى اختيار إما الاعتراف أو الرفض",
	PhraseTraditional:        "تقليدي",
	PhraseNonConventional:    "غير تقليدي (عن بعد)",
}

// Localize translates the interpreted phrases for the requested language.
// Only "ar" changes anything; unknown languages fall through to English.
func Localize(status models.InterpretedStatus, lang string) models.InterpretedStatus {
	if !strings.EqualFold(lang, "ar") {
		return status
	}
	if translated, ok := arabicPhrases[status.DegreePhrase]; ok {
		status.DegreePhrase = translated
	}
	if translated, ok := arabicPhrases[status.SystemPhrase]; ok {
		status.SystemPhrase = translated
	}
	return status
}

// Aggregate status strings shown on the institution dashboard.
const (
	StatusNotFinalized    = "Not yet Finalized by Ministry in a Meeting"
	StatusNeedsReview     = "Unknown Status - Needs Review"
	StatusNCRecognized    = "Nonconventional Recognized"
	StatusNoSupervisor    = "University has not completed submission process (No Supervisor Assigned)"
	StatusAwaitingMeeting = "Uni assigned to a supervisor but meeting hasn't been made for it"
)

// Summarize folds an institution's full decision history into the dashboard
// row statuses. Only reasons recorded under a finalized "Recognized" outcome
// count toward the conventional track; the non-conventional track takes the
// latest non-conventional verdict.
func Summarize(inst models.Institution, history []models.DecisionRecord, meetingNumber string) models.InstitutionStatus {
	var (
		diplomaRecognized, bachelorRecognized, fullRecognition bool
	)

	for _, record := range history {
		if !record.IsRecognized() {
			continue
		}
		for _, token := range models.ParseReasons(record.Reasons) {
			switch token.Kind {
			case models.ReasonDiplomaRecognized:
				diplomaRecognized = true
			case models.ReasonBscRecognized:
				bachelorRecognized = true
			case models.ReasonHigherRecognized:
				fullRecognition = true
			case models.ReasonControl:
				if strings.Contains(strings.ToLower(token.Raw), FullRecognitionMarker) {
					fullRecognition = true
				}
			}
		}
	}

	conventional := StatusNotFinalized
	anyRecognized := diplomaRecognized || bachelorRecognized || fullRecognition
	switch {
	case !anyRecognized:
		conventional = StatusNotFinalized
	case bachelorRecognized && diplomaRecognized:
		conventional = "Accepted (Partial: BSc and Diploma) - Meeting " + meetingNumber
	case bachelorRecognized:
		conventional = "Accepted (Partial: BSc) - Meeting " + meetingNumber
	case diplomaRecognized:
		conventional = "Accepted (Partial: Diploma) - Meeting " + meetingNumber
	case fullRecognition:
		conventional = "Fully Accepted - Meeting " + meetingNumber
	default:
		conventional = StatusNeedsReview
	}

	// Latest non-conventional verdict wins for the online track.
	nonConventional := StatusNotFinalized
	for i := len(history) - 1; i >= 0; i-- {
		found := false
		for _, token := range models.ParseReasons(history[i].Reasons) {
			if token.Kind != models.ReasonNonConventional {
				continue
			}
			found = true
			if token.Outcome == models.OutcomeRecognized && history[i].IsRecognized() {
				nonConventional = StatusNCRecognized
			} else {
				nonConventional = StatusNotFinalized
			}
			break
		}
		if found {
			break
		}
	}

	final := conventional
	switch {
	case !inst.SupervisorAssigned():
		final = StatusNoSupervisor
	case meetingNumber == "":
		final = StatusAwaitingMeeting
	}

	supervisorName := ""
	if inst.SupervisorName != nil {
		supervisorName = *inst.SupervisorName
	}

	return models.InstitutionStatus{
		InsID:                 inst.InsID,
		Name:                  inst.Name,
		Country:               inst.Country,
		Speciality:            inst.Speciality,
		SupervisorName:        supervisorName,
		State:                 inst.State,
		MeetingNumber:         meetingNumber,
		ConventionalStatus:    conventional,
		NonConventionalStatus: nonConventional,
		FinalStatus:           final,
	}
}
