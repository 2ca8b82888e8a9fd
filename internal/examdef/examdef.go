// Package examdef compiles exam definitions authored in CUE.
//
// An exam definition describes what the capture UI presents and what the
// server reports: exam id and title, optional duration, and an ordered
// question list with prompts. Definitions live in a directory of .cue
// files under an `exam` top-level field:
//
//	exam: {
//		id:    "exam-2026-01"
//		title: "Systems Programming Midterm"
//		durationMinutes: 90
//		questions: [
//			{id: "q1", prompt: "Explain WAL mode.", maxLength: 2000},
//			{id: "q2", prompt: "...", reference: "expected answer"},
//		]
//	}
//
// Compile validates structure (non-empty ids and title, at least one
// question, unique question ids, positive maxLength) and reports CUE file
// positions on errors where available.
package examdef

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"
)

// Exam is a compiled exam definition.
type Exam struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	DurationMinutes int           `json:"durationMinutes,omitempty"`
	Questions       []QuestionDef `json:"questions"`
}

// QuestionDef is one question within an exam.
type QuestionDef struct {
	ID        string `json:"id"`
	Prompt    string `json:"prompt"`
	Reference string `json:"reference,omitempty"` // expected answer, if authored
	MaxLength int    `json:"maxLength,omitempty"` // rune cap for the answer; 0 = unlimited
}

// CompileError reports a definition that fails compilation, with the CUE
// source position when one is available.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Compile parses a CUE value holding the `exam` struct into an Exam.
//
// The value should be the instance root; Compile looks up the exam field
// itself. All structural errors found are returned, not just the first:
// authors fix definition files in one pass.
func Compile(v cue.Value) (*Exam, []error) {
	if err := v.Err(); err != nil {
		return nil, []error{&CompileError{Field: "exam", Message: err.Error(), Pos: v.Pos()}}
	}

	examVal := v.LookupPath(cue.ParsePath("exam"))
	if !examVal.Exists() {
		return nil, []error{&CompileError{Field: "exam", Message: "top-level exam field is required", Pos: v.Pos()}}
	}

	var errs []error
	exam := &Exam{}

	exam.ID = requiredString(examVal, "id", &errs)
	exam.Title = requiredString(examVal, "title", &errs)

	if durVal := examVal.LookupPath(cue.ParsePath("durationMinutes")); durVal.Exists() {
		dur, err := durVal.Int64()
		if err != nil {
			errs = append(errs, &CompileError{Field: "durationMinutes", Message: "must be an integer", Pos: durVal.Pos()})
		} else if dur <= 0 {
			errs = append(errs, &CompileError{Field: "durationMinutes", Message: "must be positive", Pos: durVal.Pos()})
		} else {
			exam.DurationMinutes = int(dur)
		}
	}

	exam.Questions = compileQuestions(examVal, &errs)

	if len(errs) > 0 {
		return nil, errs
	}
	return exam, nil
}

func compileQuestions(examVal cue.Value, errs *[]error) []QuestionDef {
	qVal := examVal.LookupPath(cue.ParsePath("questions"))
	if !qVal.Exists() {
		*errs = append(*errs, &CompileError{Field: "questions", Message: "at least one question is required", Pos: examVal.Pos()})
		return nil
	}

	iter, err := qVal.List()
	if err != nil {
		*errs = append(*errs, &CompileError{Field: "questions", Message: "must be a list", Pos: qVal.Pos()})
		return nil
	}

	var questions []QuestionDef
	seen := make(map[string]bool)
	for i := 0; iter.Next(); i++ {
		item := iter.Value()
		field := fmt.Sprintf("questions[%d]", i)

		var q QuestionDef
		q.ID = requiredStringAt(item, "id", field, errs)
		q.Prompt = requiredStringAt(item, "prompt", field, errs)

		if q.ID != "" {
			if seen[q.ID] {
				*errs = append(*errs, &CompileError{Field: field + ".id", Message: fmt.Sprintf("duplicate question id %q", q.ID), Pos: item.Pos()})
			}
			seen[q.ID] = true
		}

		if refVal := item.LookupPath(cue.ParsePath("reference")); refVal.Exists() {
			ref, err := refVal.String()
			if err != nil {
				*errs = append(*errs, &CompileError{Field: field + ".reference", Message: "must be a string", Pos: refVal.Pos()})
			} else {
				q.Reference = ref
			}
		}

		if mlVal := item.LookupPath(cue.ParsePath("maxLength")); mlVal.Exists() {
			ml, err := mlVal.Int64()
			if err != nil {
				*errs = append(*errs, &CompileError{Field: field + ".maxLength", Message: "must be an integer", Pos: mlVal.Pos()})
			} else if ml <= 0 {
				*errs = append(*errs, &CompileError{Field: field + ".maxLength", Message: "must be positive", Pos: mlVal.Pos()})
			} else {
				q.MaxLength = int(ml)
			}
		}

		questions = append(questions, q)
	}

	if len(questions) == 0 {
		*errs = append(*errs, &CompileError{Field: "questions", Message: "at least one question is required", Pos: qVal.Pos()})
	}
	return questions
}

func requiredString(v cue.Value, name string, errs *[]error) string {
	return requiredStringAt(v, name, "", errs)
}

func requiredStringAt(v cue.Value, name, prefix string, errs *[]error) string {
	field := name
	if prefix != "" {
		field = prefix + "." + name
	}

	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		*errs = append(*errs, &CompileError{Field: field, Message: "is required", Pos: v.Pos()})
		return ""
	}
	s, err := fv.String()
	if err != nil {
		*errs = append(*errs, &CompileError{Field: field, Message: "must be a string", Pos: fv.Pos()})
		return ""
	}
	if s == "" {
		*errs = append(*errs, &CompileError{Field: field, Message: "must be non-empty", Pos: fv.Pos()})
	}
	return s
}
