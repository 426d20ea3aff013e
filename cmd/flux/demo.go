package main

import (
	"fmt"
	"slices"

	"github.com/tailored-agentic-units/flux/action"
	"github.com/tailored-agentic-units/flux/store"
)

type todo struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// todoList is replaced, never edited, by the todos handlers.
type todoList struct {
	Items  []todo `json:"items"`
	frozen bool
}

func (l *todoList) Freeze() { l.frozen = true }

func (l *todoList) pending() int {
	n := 0
	for _, item := range l.Items {
		if !item.Done {
			n++
		}
	}
	return n
}

// registerDemoStores creates the stores the CLI drives. _log waits for the
// other two so its entries record their post-action values.
func registerDemoStores(root *store.Root) error {
	counter, err := root.CreateStore("counter", &store.Spec{
		InitialState: func() any { return 0 },
		Handlers: map[string]store.Handler{
			"increment": func(state, data any, _ store.WaitFunc) (any, error) {
				return state.(int) + step(data), nil
			},
			"decrement": func(state, data any, _ store.WaitFunc) (any, error) {
				return state.(int) - step(data), nil
			},
			"reset": func(state, _ any, _ store.WaitFunc) (any, error) {
				return 0, nil
			},
		},
	})
	if err != nil {
		return err
	}

	todos, err := root.CreateStore("todos", &store.Spec{
		InitialState: func() any { return &todoList{} },
		Handlers: map[string]store.Handler{
			"add": func(state, data any, _ store.WaitFunc) (any, error) {
				text, ok := data.(string)
				if !ok || text == "" {
					return nil, fmt.Errorf("add: want non-empty text, got %v", data)
				}
				prev := state.(*todoList)
				return &todoList{Items: append(slices.Clone(prev.Items), todo{Text: text})}, nil
			},
			"toggle": func(state, data any, _ store.WaitFunc) (any, error) {
				prev := state.(*todoList)
				i, ok := data.(int)
				if !ok || i < 0 || i >= len(prev.Items) {
					return state, nil
				}
				items := slices.Clone(prev.Items)
				items[i].Done = !items[i].Done
				return &todoList{Items: items}, nil
			},
			"clear": func(state, _ any, _ store.WaitFunc) (any, error) {
				if len(state.(*todoList).Items) == 0 {
					return state, nil
				}
				return &todoList{}, nil
			},
		},
	}, store.WithSelectors(map[string]store.Selector{
		"count": func(state any, _ ...any) any {
			return len(state.(*todoList).Items)
		},
		"pending": func(state any, _ ...any) any {
			return state.(*todoList).pending()
		},
	}))
	if err != nil {
		return err
	}

	_, err = root.CreateStore("_log", store.Reducer(func(state any, act action.Action, waitFor store.WaitFunc) (any, error) {
		if act.IsZero() {
			return []string{}, nil
		}
		if err := waitFor(counter.DispatchToken(), todos.DispatchToken()); err != nil {
			return nil, err
		}
		entry := fmt.Sprintf("%s counter=%v todos=%v", act.Type, counter.GetState(), len(todos.GetState().(*todoList).Items))
		return append(slices.Clone(state.([]string)), entry), nil
	}))
	return err
}

func step(data any) int {
	if n, ok := data.(int); ok {
		return n
	}
	return 1
}
