package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/automaton"
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/config"
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/grading"
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/validate"
)

var (
	checkQuestionsPath string
	checkQuestionID    string
	checkSeed          int64
	validateKind       string
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <answer.json>",
		Short: "Grade an answer file against a question from the bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
	cmd.Flags().StringVar(&checkQuestionsPath, "questions", "", "question file or directory (defaults to questions_path from config)")
	cmd.Flags().StringVar(&checkQuestionID, "id", "", "question id")
	cmd.Flags().Int64Var(&checkSeed, "seed", 1, "seed for counterexample selection")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func runCheck(ctx context.Context, out io.Writer, answerPath string) error {
	path := checkQuestionsPath
	if path == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		path = cfg.QuestionsPath
	}
	if path == "" {
		return fmt.Errorf("no question bank: pass --questions or set questions_path")
	}

	questions, err := config.LoadQuestions(path)
	if err != nil {
		return err
	}
	var q *grading.Question
	for i := range questions {
		if questions[i].ID == checkQuestionID {
			q = &questions[i]
			break
		}
	}
	if q == nil {
		return fmt.Errorf("question %q not found in %s", checkQuestionID, path)
	}

	var ans grading.Answer
	if err := readJSON(answerPath, &ans); err != nil {
		return err
	}

	grader := grading.NewGrader(grading.Config{Seed: checkSeed}, newLogger("warn"))
	res, err := grader.GradeQuestion(ctx, *q, ans)
	if err != nil {
		return err
	}
	return writeJSON(out, res)
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <submission.json>",
		Short: "Check a raw automaton submission and print its normalized form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), args[0])
		},
	}
	cmd.Flags().StringVar(&validateKind, "kind", grading.KindDFA, "automaton kind: dfa or nfa")
	return cmd
}

func runValidate(out io.Writer, path string) error {
	var sub validate.Submission
	if err := readJSON(path, &sub); err != nil {
		return err
	}

	var (
		normalized validate.Submission
		err        error
	)
	switch validateKind {
	case grading.KindDFA:
		var def automaton.DFADefinition
		def, err = validate.ConvertDFA(sub, validate.Options{})
		normalized = validate.SubmissionFromDFA(def)
	case grading.KindNFA:
		var def automaton.NFADefinition
		def, err = validate.ConvertNFA(sub, validate.Options{})
		normalized = validate.SubmissionFromNFA(def, sub.EpsilonSymbol)
	default:
		return fmt.Errorf("unknown kind %q", validateKind)
	}
	if err != nil {
		if fb, ok := grading.FeedbackForError(err); ok {
			return errors.Join(err, writeJSON(out, fb))
		}
		return err
	}
	return writeJSON(out, normalized)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
