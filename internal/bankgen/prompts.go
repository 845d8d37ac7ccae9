package bankgen

import (
	"fmt"
	"strings"

	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

// mechanicFormatBlocks gives, per mechanic, the example JSON object the
// original_source/generate_questions.py prompt shows the model, so the LLM's
// output lines up field-for-field with what bank.Load validates. The
// sentence-scramble block lists only the words that fill the blanks, since
// bank.Load requires correct_order to cover every word_options entry. The
// audio-category-sorting block has no original_source precedent and is
// self-designed from the CategorySortItem shape in models/question.go.
var mechanicFormatBlocks = map[models.Mechanic]string{
	models.MechanicMultipleChoiceText: `{
  "id": "L%[1]d_MC_001",
  "mechanic": "multiple-choice-text-text",
  "sentence": "She ___ to school every day.",
  "options": ["go", "goes", "going", "went"],
  "correct_answer": 1,
  "skill": "Grammar",
  "difficulty": 0.3
}`,
	models.MechanicWordPronunciation: `{
  "id": "L%[1]d_WP_001",
  "mechanic": "word-pronunciation-practice",
  "target_word": "elephant",
  "phonetic": "/ˈelɪfənt/",
  "image_description": "Large gray animal with trunk",
  "skill": "Pronunciation",
  "difficulty": 0.2
}`,
	models.MechanicImageSingleChoice: `{
  "id": "L%[1]d_IS_001",
  "mechanic": "image-single-choice-from-texts",
  "image_description": "Clock showing 3:00",
  "options": ["three o'clock", "four o'clock", "half past three", "quarter to three"],
  "correct_answer": 0,
  "skill": "Vocabulary",
  "difficulty": 0.3
}`,
	models.MechanicAudioSingleChoice: `{
  "id": "L%[1]d_AI_001",
  "mechanic": "audio-single-choice-from-images",
  "target_audio": "elephant",
  "image_options": ["Large gray animal with trunk", "Small brown dog", "Yellow bird with wings"],
  "correct_answer": 0,
  "skill": "Vocabulary",
  "difficulty": 0.3
}`,
	models.MechanicSentencePronunciation: `{
  "id": "L%[1]d_SP_001",
  "mechanic": "sentence-pronunciation-practice",
  "target_sentence": "How are you today?",
  "phonetic": "/haʊ ɑr ju təˈdeɪ/",
  "image_description": "Two people greeting each other with smiles",
  "skill": "Pronunciation",
  "difficulty": 0.4
}`,
	models.MechanicSentenceScramble: `{
  "id": "L%[1]d_SS_001",
  "mechanic": "sentence-scramble",
  "sentence_template": "I ___ to ___ every day",
  "word_options": ["school", "go"],
  "correct_order": [1, 0],
  "skill": "Grammar",
  "difficulty": 0.4
}`,
	models.MechanicAudioCategorySorting: `{
  "id": "L%[1]d_AC_001",
  "mechanic": "audio-category-sorting",
  "categories": ["animals", "food"],
  "sort_items": [
    {"id": "item_1", "label": "elephant", "category": "animals"},
    {"id": "item_2", "label": "banana", "category": "food"},
    {"id": "item_3", "label": "dog", "category": "animals"},
    {"id": "item_4", "label": "apple", "category": "food"}
  ],
  "skill": "Vocabulary",
  "difficulty": 0.5
}`,
}

// systemPrompt mirrors the teacher's fixed, curriculum-expert framing but
// swapped from LSAT subtype rules to the Novakid mechanic/skill model.
func systemPrompt() string {
	return "You are an ESL curriculum expert creating placement test questions for children aged 4-12. " +
		"You write age-appropriate, unambiguous questions and always return machine-parseable JSON exactly " +
		"matching the requested schema."
}

// buildGenerationPrompt mirrors generate_questions_prompt: state the level,
// mechanic, and CEFR mapping, show the exact target JSON shape, and ask for
// a fixed batch size.
func buildGenerationPrompt(level int, mechanic models.Mechanic, count int) (string, error) {
	block, ok := mechanicFormatBlocks[mechanic]
	if !ok {
		return "", fmt.Errorf("no prompt template for mechanic %q", mechanic)
	}
	example := fmt.Sprintf(block, level)

	var b strings.Builder
	fmt.Fprintf(&b, "LEVEL: Novakid Level %d (%s)\n", level, models.CEFRLabels[level])
	fmt.Fprintf(&b, "MECHANIC: %s\n\n", mechanic)
	fmt.Fprintf(&b, "Generate exactly %d questions for the %s mechanic at Novakid Level %d.\n\n", count, mechanic, level)
	b.WriteString("Every question must look like this shape (values are examples, not to be reused verbatim):\n")
	b.WriteString(example)
	b.WriteString("\n\nRequirements:\n")
	b.WriteString("- Age-appropriate vocabulary and topics for a 4-12 year old ESL learner\n")
	b.WriteString("- Gradually increasing difficulty within the level, spread across the \"difficulty\" field\n")
	b.WriteString("- Exactly one unambiguous correct answer per question\n")
	b.WriteString("- Varied topics across the batch\n")
	b.WriteString("- Every \"id\" value must be unique within the batch\n\n")
	b.WriteString("Return ONLY a valid JSON array of question objects. No additional text, no markdown fences.")
	return b.String(), nil
}
