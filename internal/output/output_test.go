package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuparmar/ports/pkg/model"
)

var nginxAncestry = model.ProcessAncestry{
	Chain: []model.Ancestor{
		{PID: 500, Name: "nginx", PPID: 1},
		{PID: 1, Name: "systemd", PPID: 0},
	},
	Source:   model.SourceSystemd,
	Unit:     "nginx.service",
	Warnings: []model.HealthWarning{model.WarningDeletedBinary},
	Git:      &model.GitContext{Repo: "site", Branch: "main"},
}

func TestRenderShort(t *testing.T) {
	var b bytes.Buffer
	RenderShort(&b, nginxAncestry, false)
	assert.Equal(t, "systemd (pid 1) → nginx (pid 500)\n", b.String())
}

func TestPrintTree(t *testing.T) {
	var b bytes.Buffer
	PrintTree(&b, nginxAncestry, false)
	assert.Equal(t, "systemd (pid 1)\n  └─ nginx (pid 500)\n", b.String())
}

func TestRenderWhy(t *testing.T) {
	results := []model.WhyResult{
		{PID: 500, ProcessName: "nginx", Ports: []string{"80/tcp", "443/tcp"}, Ancestry: &nginxAncestry},
		{PID: 900, ProcessName: "ghost\x1b[2J"},
	}
	var b bytes.Buffer
	RenderWhy(&b, results, WhyOptions{})
	out := b.String()

	for _, want := range []string{
		"Process: nginx (PID 500)",
		"  Ports:     80/tcp, 443/tcp",
		"  Source:    systemd",
		"  Unit:      nginx.service",
		"  Chain:     systemd (pid 1) → nginx (pid 500)",
		"  Git:       site (main)",
		"  Warning:   binary deleted from disk since the process started",
		`Process: ghost\x1b[2J (PID 900)`,
		"ancestry unavailable",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\x1b")
}

func TestRenderWhyLaunchdLabelAndTree(t *testing.T) {
	a := model.ProcessAncestry{
		Chain:  []model.Ancestor{{PID: 77, Name: "sshd", PPID: 1}, {PID: 1, Name: "launchd"}},
		Source: model.SourceLaunchd,
		Unit:   "com.openssh.sshd",
	}
	var b bytes.Buffer
	RenderWhy(&b, []model.WhyResult{{PID: 77, ProcessName: "sshd", Ancestry: &a}}, WhyOptions{Tree: true})
	out := b.String()
	assert.Contains(t, out, "  Label:     com.openssh.sshd")
	assert.Contains(t, out, "    launchd (pid 1)\n      └─ sshd (pid 77)\n")
}

func TestRenderPorts(t *testing.T) {
	records := []model.PortRecord{
		{Port: 80, Protocol: model.TCP, PID: 500, ProcessName: "nginx", Address: "0.0.0.0:80", ServiceName: "http"},
		{Port: 5432, Protocol: model.TCP, PID: 600, ProcessName: "docker-proxy", Container: "db", Address: "0.0.0.0:5432"},
	}
	var b bytes.Buffer
	RenderPorts(&b, records, TableOptions{Highlight: func(r model.PortRecord) bool { return r.Port == 5432 }})
	out := b.String()

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Regexp(t, `^PORT\s+PROTO\s+PID\s+PROCESS\s+SERVICE\s+ADDRESS`, strings.TrimSpace(lines[0]))
	assert.Contains(t, out, "docker-proxy (db)")
	assert.Contains(t, out, "+5432")
	assert.Contains(t, out, "2 listening port(s) found")
	assert.NotContains(t, out, "REMOTE")
}

func TestRenderPortsEmpty(t *testing.T) {
	var b bytes.Buffer
	RenderPorts(&b, nil, TableOptions{Connections: true})
	assert.Equal(t, "No connection(s) found\n", b.String())
}

func TestWriteJSONTokens(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteWhyJSON(&b, []model.WhyResult{{PID: 500, ProcessName: "nginx", Ancestry: &nginxAncestry}}))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(b.Bytes(), &decoded))
	anc := decoded[0]["ancestry"].(map[string]any)
	assert.Equal(t, "systemd", anc["source"])
	assert.Equal(t, []any{"deleted-binary"}, anc["warnings"])

	b.Reset()
	require.NoError(t, WritePortsJSON(&b, nil))
	assert.Equal(t, "[]\n", b.String())
}

func TestRenderError(t *testing.T) {
	var b bytes.Buffer
	RenderError(&b, errors.New("no process found matching \"x\""), false)
	assert.Equal(t, "Error: no process found matching \"x\"\n", b.String())
}
