package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
)

func TestResolveNDF(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want config
	}{
		{
			name: "flat members",
			src:  "config is Config(\n    log_level = 'debug'\n    log_caller = true\n    width = 80\n)",
			want: config{"log-level": "debug", "log-caller": true, "width": "80"},
		},
		{
			name: "nested object",
			src:  "config is Config(log = Log(format = \"json\" pretty = false))",
			want: config{"log-format": "json", "log-pretty": false},
		},
		{
			name: "list value",
			src:  "config is Config(set = ['value=1', 'type=int'])",
			want: config{"set": "value=1,type=int"},
		},
		{
			name: "other namespaces ignored",
			src:  "other is Config(log_level = 'warn')\nconfig is Config(log_level = 'error')",
			want: config{"log-level": "error"},
		},
		{
			name: "missing namespace",
			src:  "other is Config(log_level = 'warn')",
			want: config{},
		},
		{
			name: "not an object",
			src:  "config is [1, 2]",
			want: config{},
		},
		{
			name: "syntax error",
			src:  "config is Config(",
			want: config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := resolveNDF(context.Background(), baseConfig)(strings.NewReader(tt.src))
			if err != nil {
				t.Fatalf("resolveNDF() error = %v", err)
			}

			if diff := cmp.Diff(tt.want, r.(config)); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveYAML(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want config
	}{
		{
			name: "flat keys",
			src:  "log-level: debug\nlog_caller: true\n",
			want: config{"log-level": "debug", "log-caller": true},
		},
		{
			name: "nested tables",
			src:  "log:\n  format: json\n  time_layout: none\nquery:\n  width: 80\n",
			want: config{"log-format": "json", "log-time-layout": "none", "query-width": "80"},
		},
		{
			name: "sequence",
			src:  "set: [a=1, b=2]\n",
			want: config{"set": "a=1,b=2"},
		},
		{
			name: "empty document",
			src:  "",
			want: config{},
		},
		{
			name: "malformed",
			src:  "log: [unterminated\n",
			want: config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := resolveYAML(context.Background())(strings.NewReader(tt.src))
			if err != nil {
				t.Fatalf("resolveYAML() error = %v", err)
			}

			if diff := cmp.Diff(tt.want, r.(config)); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveJSON(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want config
	}{
		{
			name: "dashed keys",
			src:  `{"log-level": "error", "log-pretty": false}`,
			want: config{"log-level": "error", "log-pretty": false},
		},
		{
			name: "snake keys",
			src:  `{"log_format": "json"}`,
			want: config{"log-format": "json"},
		},
		{
			name: "nested tables",
			src:  `{"log": {"time_layout": "none"}, "query": {"width": 80}}`,
			want: config{"log-time-layout": "none", "query-width": "80"},
		},
		{
			name: "empty document",
			src:  "  \n",
			want: config{},
		},
		{
			name: "malformed",
			src:  `{"log": `,
			want: config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := resolveJSON(context.Background())(strings.NewReader(tt.src))
			if err != nil {
				t.Fatalf("resolveJSON() error = %v", err)
			}

			if diff := cmp.Diff(tt.want, r.(config)); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfig_Resolve(t *testing.T) {
	c := config{"log-level": "debug"}

	v, err := c.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "log-level"}})
	if err != nil || v != "debug" {
		t.Errorf("Resolve(log-level) = %v, %v", v, err)
	}

	v, err = c.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "log-format"}})
	if err != nil || v != nil {
		t.Errorf("Resolve(log-format) = %v, %v, want nil", v, err)
	}

	if err := c.Validate(nil); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestScalar(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{nil, nil},
		{"s", "s"},
		{true, true},
		{42, "42"},
		{int64(-3), "-3"},
		{uint64(7), "7"},
		{1.5, "1.5"},
		{[]any{"a", uint64(1)}, "a,1"},
	}

	for _, tt := range tests {
		if got := scalar(tt.in); got != tt.want {
			t.Errorf("scalar(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
