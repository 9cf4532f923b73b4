package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProtocol(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in      string
		want    Protocol
		wantErr bool
	}{
		"lower":   {in: "tcp", want: TCP},
		"upper":   {in: "UDP", want: UDP},
		"padded":  {in: " udp ", want: UDP},
		"unknown": {in: "sctp", wantErr: true},
		"empty":   {in: "", wantErr: true},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseProtocol(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordKeyIgnoresEnrichment(t *testing.T) {
	t.Parallel()

	a := PortRecord{Port: 8080, Protocol: TCP, PID: 10, ProcessName: "docker-proxy", Address: "0.0.0.0:8080"}
	b := a
	b.Container = "web"
	b.ServiceName = "http-alt"
	assert.Equal(t, a.Key(), b.Key())

	b.RemoteAddress = "10.0.0.1:4000"
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	r := PortRecord{ProcessName: "docker-proxy"}
	assert.Equal(t, "docker-proxy", r.DisplayName())
	r.Container = "web"
	assert.Equal(t, "web", r.DisplayName())
}

func TestAncestryJSON(t *testing.T) {
	t.Parallel()

	a := ProcessAncestry{
		Chain:    []Ancestor{{PID: 500, Name: "nginx", PPID: 1}, {PID: 1, Name: "systemd"}},
		Source:   SourceSystemd,
		Warnings: []HealthWarning{WarningZombie},
		Git:      &GitContext{Repo: "site", Branch: "main"},
	}
	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"chain": [{"pid": 500, "name": "nginx", "ppid": 1}, {"pid": 1, "name": "systemd", "ppid": 0}],
		"source": "systemd",
		"warnings": ["zombie"],
		"git": {"repo": "site", "branch": "main"}
	}`, string(b))

	var back ProcessAncestry
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, a, back)
	assert.Equal(t, 500, back.PID())
	assert.Equal(t, "systemd", back.RootToTarget()[0].Name)
}

func TestUnmarshalRejectsUnknownTokens(t *testing.T) {
	t.Parallel()

	var s SourceType
	require.Error(t, json.Unmarshal([]byte(`"kubernetes"`), &s))

	var w HealthWarning
	require.Error(t, json.Unmarshal([]byte(`"slow"`), &w))
}

func TestSourceTypeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unknown", SourceType("").String())
	assert.Equal(t, "pm2", SourcePm2.String())
	assert.Equal(t, "site", GitContext{Repo: "site"}.String())
}
