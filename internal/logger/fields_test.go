package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestStringFieldsSkipsBlank(t *testing.T) {
	fields := StringFields(
		StringField{Key: " ai_provider ", Value: "  ollama "},
		StringField{Key: "ai_model", Value: "\t"},
		StringField{Key: "", Value: "llama3.2"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].Key != "ai_provider" || fields[0].String != "ollama" {
		t.Fatalf("unexpected field: %+v", fields[0])
	}
	if len(StringFields()) != 0 {
		t.Fatalf("expected no fields for no input")
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	log := WithFields(nil, zap.String("stage", "probe"))
	if log == nil {
		t.Fatalf("expected a usable logger")
	}
	log.Info("does not panic")

	base, _ := observed()
	if WithFields(base) != base {
		t.Fatalf("expected the same logger when no fields are given")
	}
}

func TestWithCommonFields(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		model    string
		expect   map[string]any
	}{
		{
			name:     "both set",
			provider: "llamacpp",
			model:    "default",
			expect:   map[string]any{FieldProvider: "llamacpp", FieldModel: "default"},
		},
		{
			name:     "model missing",
			provider: "huggingface",
			expect:   map[string]any{FieldProvider: "huggingface"},
		},
		{
			name:   "nothing set",
			expect: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, logs := observed()
			WithCommonFields(log, tt.provider, tt.model).Info("oracle call")

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}
			ctx := entries[0].ContextMap()
			if len(ctx) != len(tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, ctx)
			}
			for k, v := range tt.expect {
				if ctx[k] != v {
					t.Fatalf("expected %s=%v, got %v", k, v, ctx[k])
				}
			}
		})
	}
}

func TestWithComponent(t *testing.T) {
	log, logs := observed()

	WithComponent(log, "fusion").Debug("probe cached")
	WithComponent(log, "  ").Debug("no component")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ContextMap()[FieldComponent] != "fusion" {
		t.Fatalf("expected component field, got %v", entries[0].ContextMap())
	}
	if _, ok := entries[1].ContextMap()[FieldComponent]; ok {
		t.Fatalf("expected blank component to be skipped")
	}
}
