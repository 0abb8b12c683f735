package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuiz(t *testing.T) {
	valid := `[{"question":"What does a goroutine run on?",
		"options":["An OS thread pool","A dedicated thread","A browser tab"],
		"answer":0}]`

	t.Run("plain json", func(t *testing.T) {
		questions, err := ParseQuiz(valid)
		assert.NoError(t, err)
		assert.Len(t, questions, 1)
		assert.Equal(t, 0, questions[0].Answer)
	})

	t.Run("fenced json", func(t *testing.T) {
		questions, err := ParseQuiz("```json\n" + valid + "\n```")
		assert.NoError(t, err)
		assert.Len(t, questions, 1)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseQuiz("Sure! Here are your questions:")
		assert.Error(t, err)
	})

	t.Run("empty array", func(t *testing.T) {
		_, err := ParseQuiz("[]")
		assert.Error(t, err)
	})

	t.Run("answer out of range", func(t *testing.T) {
		_, err := ParseQuiz(`[{"question":"Q?","options":["a","b"],"answer":2}]`)
		assert.Error(t, err)
	})

	t.Run("too few options", func(t *testing.T) {
		_, err := ParseQuiz(`[{"question":"Q?","options":["a"],"answer":0}]`)
		assert.Error(t, err)
	})
}
