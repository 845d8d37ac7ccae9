package models

// Mechanic is the format of a single question.
type Mechanic string

const (
	MechanicWordPronunciation     Mechanic = "word-pronunciation-practice"
	MechanicSentencePronunciation Mechanic = "sentence-pronunciation-practice"
	MechanicAudioSingleChoice     Mechanic = "audio-single-choice-from-images"
	MechanicAudioCategorySorting  Mechanic = "audio-category-sorting"
	MechanicImageSingleChoice     Mechanic = "image-single-choice-from-texts"
	MechanicMultipleChoiceText    Mechanic = "multiple-choice-text-text"
	MechanicSentenceScramble      Mechanic = "sentence-scramble"
)

// Category buckets a mechanic for 50/50 selection balancing.
type Category string

const (
	CategoryAudio Category = "audio"
	CategoryText  Category = "text"
)

// CategoryOf returns the balancing category for a mechanic. Pronunciation
// mechanics have their own skill bucket but balance under audio.
func CategoryOf(m Mechanic) Category {
	switch m {
	case MechanicWordPronunciation, MechanicSentencePronunciation,
		MechanicAudioSingleChoice, MechanicAudioCategorySorting:
		return CategoryAudio
	default:
		return CategoryText
	}
}

// Skill is the competency a question is scored against.
type Skill string

const (
	SkillPronunciation Skill = "Pronunciation"
	SkillVocabulary    Skill = "Vocabulary"
	SkillGrammar       Skill = "Grammar"
	SkillReading       Skill = "Reading"
	SkillSpeaking      Skill = "Speaking"
)

// SkillBucket is the aggregation bucket a Skill maps into for scoring.
type SkillBucket string

const (
	BucketVocabulary    SkillBucket = "vocabulary"
	BucketPronunciation SkillBucket = "pronunciation"
	BucketGrammar       SkillBucket = "grammar"
)

// BucketOf maps a raw Skill onto the three scoring buckets from spec.md §4.4.
func BucketOf(s Skill) (SkillBucket, bool) {
	switch s {
	case SkillReading, SkillVocabulary:
		return BucketVocabulary, true
	case SkillSpeaking, SkillPronunciation:
		return BucketPronunciation, true
	case SkillGrammar:
		return BucketGrammar, true
	default:
		return "", false
	}
}

// CEFRLabels maps a Novakid level (0-5) to its CEFR equivalent.
var CEFRLabels = [6]string{"pre-A1", "A1", "A1+", "A2", "B1", "B2"}

// AllowedMechanics is the curriculum gate: mechanics permitted at each level.
var AllowedMechanics = map[int]map[Mechanic]bool{
	0: {
		MechanicWordPronunciation: true,
	},
	1: {
		MechanicWordPronunciation: true,
		MechanicImageSingleChoice: true,
		MechanicAudioSingleChoice: true,
	},
}

func init() {
	level2Plus := map[Mechanic]bool{
		MechanicWordPronunciation:     true,
		MechanicImageSingleChoice:     true,
		MechanicAudioSingleChoice:     true,
		MechanicMultipleChoiceText:    true,
		MechanicSentencePronunciation: true,
		MechanicAudioCategorySorting:  true,
		MechanicSentenceScramble:      true,
	}
	for lvl := 2; lvl <= 5; lvl++ {
		AllowedMechanics[lvl] = level2Plus
	}
}

// MechanicAllowedAt reports whether a mechanic is permitted at a level.
func MechanicAllowedAt(m Mechanic, level int) bool {
	set, ok := AllowedMechanics[level]
	if !ok {
		return false
	}
	return set[m]
}

// CalibrationSafeAt restricts calibration-phase candidates.
// word-pronunciation-practice is always safe; image-single-choice requires
// level >= 1; multiple-choice-text-text requires level >= 2.
func CalibrationSafeAt(m Mechanic, level int) bool {
	switch m {
	case MechanicWordPronunciation:
		return true
	case MechanicImageSingleChoice:
		return level >= 1
	case MechanicMultipleChoiceText:
		return level >= 2
	default:
		return false
	}
}

// Question is an immutable bank record. Exactly one of the mechanic-specific
// payload fields below is populated, selected by Mechanic.
type Question struct {
	ID         string   `json:"id"`
	Mechanic   Mechanic `json:"mechanic"`
	Level      int      `json:"level"`
	Skill      Skill    `json:"skill"`
	Difficulty float64  `json:"difficulty"`

	// assigned_level is stamped by the Selection Policy at serve time; it
	// equals the bank bucket the question was drawn from, but is carried
	// separately from Level so a served Question can be passed around
	// without reaching back into the bank.
	AssignedLevel int  `json:"assigned_level,omitempty"`
	IsCalibration bool `json:"is_calibration,omitempty"`

	// word-pronunciation-practice / sentence-pronunciation-practice
	TargetWord     string `json:"target_word,omitempty"`
	TargetSentence string `json:"target_sentence,omitempty"`
	Phonetic       string `json:"phonetic,omitempty"`
	ImageDesc      string `json:"image_description,omitempty"`

	// multiple-choice-text-text / image-single-choice-from-texts
	Sentence      string   `json:"sentence,omitempty"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer int      `json:"correct_answer,omitempty"`

	// audio-single-choice-from-images
	TargetAudio  string   `json:"target_audio,omitempty"`
	ImageOptions []string `json:"image_options,omitempty"`

	// audio-category-sorting
	Categories []string           `json:"categories,omitempty"`
	SortItems  []CategorySortItem `json:"sort_items,omitempty"`

	// sentence-scramble
	SentenceTemplate string   `json:"sentence_template,omitempty"`
	WordOptions      []string `json:"word_options,omitempty"`
	CorrectOrder     []int    `json:"correct_order,omitempty"`
}

// CategorySortItem is one item a student must place into a category for
// audio-category-sorting questions.
type CategorySortItem struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

// Bank is the immutable level → questions mapping loaded once at startup.
type Bank map[int][]Question
