package testutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/prompt"
)

// ScriptedPrompter answers questions from per-key queues of raw input. Each
// answer is validated like the console does: an invalid answer is recorded
// in Rejected and the next queued answer is tried. An exhausted queue
// cancels, as a closed terminal would.
type ScriptedPrompter struct {
	Answers  map[string][]string
	Confirms []bool
	// Asked records every question key in order
	Asked []string
	// Rejected records every invalid answer by key
	Rejected map[string][]string
	// Questions records confirmation questions
	Questions []string
}

// NewScriptedPrompter creates an empty script
func NewScriptedPrompter() *ScriptedPrompter {
	return &ScriptedPrompter{Answers: map[string][]string{}, Rejected: map[string][]string{}}
}

// Answer queues raw answers for key
func (s *ScriptedPrompter) Answer(key string, answers ...string) *ScriptedPrompter {
	s.Answers[key] = append(s.Answers[key], answers...)
	return s
}

// ConfirmWith queues confirmation answers
func (s *ScriptedPrompter) ConfirmWith(answers ...bool) *ScriptedPrompter {
	s.Confirms = append(s.Confirms, answers...)
	return s
}

func (s *ScriptedPrompter) next(ctx context.Context, key string) (string, error) {
	if ctx.Err() != nil {
		return "", errors.New(errors.ErrInterrupted, "prompt interrupted")
	}
	queue := s.Answers[key]
	if len(queue) == 0 {
		return "", errors.Cancelled(fmt.Sprintf("no scripted answer for %s", key))
	}
	s.Answers[key] = queue[1:]
	return queue[0], nil
}

// Ask implements prompt.Prompter
func (s *ScriptedPrompter) Ask(ctx context.Context, q prompt.Question) (string, error) {
	s.Asked = append(s.Asked, q.Key)
	for {
		answer, err := s.next(ctx, q.Key)
		if err != nil {
			return "", err
		}
		if answer == "" && q.Default != "" {
			answer = q.Default
		}
		if answer == "" {
			s.Rejected[q.Key] = append(s.Rejected[q.Key], answer)
			continue
		}
		if err := q.Check(answer); err != nil {
			s.Rejected[q.Key] = append(s.Rejected[q.Key], answer)
			continue
		}
		return answer, nil
	}
}

// AskMany implements prompt.Prompter
func (s *ScriptedPrompter) AskMany(ctx context.Context, q prompt.Question) ([]string, error) {
	s.Asked = append(s.Asked, q.Key)
	for {
		answer, err := s.next(ctx, q.Key)
		if err != nil {
			return nil, err
		}
		if answer == "" {
			return strings.Fields(q.Default), nil
		}
		values := strings.Fields(answer)
		if err := q.CheckAll(values); err != nil {
			s.Rejected[q.Key] = append(s.Rejected[q.Key], answer)
			continue
		}
		return values, nil
	}
}

// Confirm implements prompt.Prompter. Without a scripted answer the default
// is taken.
func (s *ScriptedPrompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	s.Questions = append(s.Questions, question)
	if ctx.Err() != nil {
		return false, errors.New(errors.ErrInterrupted, "prompt interrupted")
	}
	if len(s.Confirms) == 0 {
		return def, nil
	}
	answer := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return answer, nil
}
