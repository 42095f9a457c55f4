package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Library answers function calls.
type Library func(context.Context, *genai.FunctionCall) *genai.FunctionResponse

// Function is a tool the model can call.
type Function interface {
	Declaration() *genai.FunctionDeclaration
	Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

// NewLibrary dispatches calls to functions by name.
func NewLibrary[T Function](functions []T) Library {
	byName := make(map[string]Function, len(functions))
	for _, f := range functions {
		byName[f.Declaration().Name] = f
	}
	return func(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
		f, ok := byName[call.Name]
		if !ok {
			return failure(call.ID, call.Name, fmt.Errorf("unknown function %s", call.Name))
		}
		return f.Call(ctx, call.ID, call.Args)
	}
}

// NewDeclaration returns the declarations of functions.
func NewDeclaration[T Function](functions []T) []*genai.FunctionDeclaration {
	result := make([]*genai.FunctionDeclaration, 0, len(functions))
	for _, f := range functions {
		result = append(result, f.Declaration())
	}
	return result
}

func success(id, name string, output any) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{"output": output}}
}

func failure(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{"error": err.Error()}}
}

func stringArg(args map[string]any, name, def string) (string, error) {
	v, ok := args[name]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return def, fmt.Errorf("argument %q is not a string as expected but %T", name, v)
	}
	return s, nil
}

// intArg reads a number argument, json numbers are decoded as float64.
func intArg(args map[string]any, name string, def int) (int, error) {
	v, ok := args[name]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	}
	return def, fmt.Errorf("argument %q is not a number as expected but %T", name, v)
}
