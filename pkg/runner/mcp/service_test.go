package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/benchquest/pkg/app"
	"tableflip.dev/benchquest/pkg/kv"
	"tableflip.dev/benchquest/pkg/metrics"
	"tableflip.dev/benchquest/pkg/protocol"
)

var fixedNow = time.Date(2026, 3, 9, 10, 0, 0, 0, time.Local)

func newService(t *testing.T) *Service {
	t.Helper()
	sess, err := app.Open(context.Background(), app.Options{
		Store: kv.NewMemory(),
		Now:   func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return NewService(sess)
}

func makeCallToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func callTool(t *testing.T, h server.ToolHandlerFunc, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := h(context.Background(), makeCallToolRequest(name, args))
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestServiceCreateAndListProtocols(t *testing.T) {
	svc := newService(t)

	_, err := svc.CreateProtocol("Western blot", "")
	require.NoError(t, err)
	_, err = svc.CreateProtocol("agarose gel", "1%")
	require.NoError(t, err)

	list, err := svc.ListProtocols()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "agarose gel", list[0].Name)
	assert.Equal(t, "Western blot", list[1].Name)
	assert.Equal(t, 0, list[0].WidgetCount)

	q, ok := svc.Session.Quests.Quest("quest-protocol-1")
	require.True(t, ok)
	assert.True(t, q.Completed, "saving a protocol credits the first protocol quest")
}

func TestServiceCreateProtocolRequiresName(t *testing.T) {
	svc := newService(t)
	_, err := svc.CreateProtocol("   ", "")
	assert.Error(t, err)
}

func TestServiceWidgets(t *testing.T) {
	svc := newService(t)
	p, err := svc.CreateProtocol("PCR", "")
	require.NoError(t, err)

	w, err := svc.AddWidget(p.ID, "timer", "Denature", json.RawMessage(`{"duration":30}`))
	require.NoError(t, err)
	assert.Equal(t, protocol.Timer, w.Type)
	assert.Equal(t, "Denature", w.Title)
	assert.Equal(t, protocol.TimerConfig{Duration: 30}, w.Config)

	w2, err := svc.AddWidget(p.ID, "note", "", nil)
	require.NoError(t, err)

	got, err := svc.GetProtocol(p.ID)
	require.NoError(t, err)
	require.Len(t, got.Widgets, 2)

	after, err := svc.RemoveWidget(p.ID, w2.ID)
	require.NoError(t, err)
	require.Len(t, after.Widgets, 1)
	assert.Equal(t, w.ID, after.Widgets[0].ID)
	assert.Equal(t, protocol.StateLibrary, svc.Session.Builder.State())
}

func TestServiceAddWidgetRejects(t *testing.T) {
	svc := newService(t)
	p, err := svc.CreateProtocol("PCR", "")
	require.NoError(t, err)

	_, err = svc.AddWidget(p.ID, "centrifuge", "", nil)
	assert.Error(t, err)

	_, err = svc.AddWidget(p.ID, "timer", "", json.RawMessage(`{"duration":0}`))
	assert.Error(t, err)

	_, err = svc.AddWidget("protocol-missing", "timer", "", nil)
	assert.ErrorIs(t, err, protocol.ErrNotFound)

	got, err := svc.GetProtocol(p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Widgets)
}

func TestServiceConcurrentWidgetEdits(t *testing.T) {
	svc := newService(t)
	a, err := svc.CreateProtocol("Miniprep", "")
	require.NoError(t, err)
	b, err := svc.CreateProtocol("Gel", "")
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.AddWidget(a.ID, "timer", "", nil)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.AddWidget(b.ID, "note", "", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	for id, want := range map[string]protocol.WidgetType{a.ID: protocol.Timer, b.ID: protocol.Note} {
		p, err := svc.GetProtocol(id)
		require.NoError(t, err)
		assert.Len(t, p.Widgets, n, p.Name)
		for _, w := range p.Widgets {
			assert.Equal(t, want, w.Type, p.Name)
		}
	}
}

func TestServiceDeleteProtocol(t *testing.T) {
	svc := newService(t)
	p, err := svc.CreateProtocol("PCR", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProtocol(p.ID))
	_, err = svc.GetProtocol(p.ID)
	assert.ErrorIs(t, err, protocol.ErrNotFound)
}

func TestServiceClaimQuestOnce(t *testing.T) {
	svc := newService(t)

	res, err := svc.ClaimQuest("quest-timer-1")
	require.NoError(t, err)
	assert.True(t, res.Claimed)
	assert.True(t, res.Quest.Completed)
	assert.Equal(t, 30, res.Score)

	res, err = svc.ClaimQuest("quest-timer-1")
	require.NoError(t, err)
	assert.False(t, res.Claimed)
	assert.Equal(t, 30, res.Score)

	_, err = svc.ClaimQuest("quest-missing")
	assert.ErrorIs(t, err, ErrQuestNotFound)
}

func TestServiceListQuests(t *testing.T) {
	svc := newService(t)
	all, err := svc.ListQuests(true)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = svc.ClaimQuest("quest-checklist-1")
	require.NoError(t, err)

	active, err := svc.ListQuests(false)
	require.NoError(t, err)
	assert.Len(t, active, 3)
}

func TestServiceCompanion(t *testing.T) {
	svc := newService(t)
	before, err := svc.CompanionStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, before.Level)

	after, err := svc.InteractCompanion()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, after.Companion.Energy, before.Companion.Energy)
}

func TestServiceJournal(t *testing.T) {
	svc := newService(t)

	_, err := svc.ExportJournalDay("")
	assert.Error(t, err, "no entry yet")

	_, err = svc.AddJournalLog("  ")
	assert.Error(t, err)

	e, err := svc.AddJournalLog("poured gel")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", e.Date)
	require.Len(t, e.Logs, 1)

	text, err := svc.ExportJournalDay("2026-03-09")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "## 2026-03-09\n"))
	assert.Contains(t, text, "poured gel")

	_, err = svc.ExportJournalDay("03/09/2026")
	assert.Error(t, err)
}

func TestServiceActivityHeatmap(t *testing.T) {
	svc := newService(t)
	_, err := svc.AddJournalLog("hello")
	require.NoError(t, err)

	cals, err := svc.ActivityHeatmap(0, 3)
	require.NoError(t, err)
	require.Len(t, cals, 1)
	assert.Equal(t, 2026, cals[0].Year)
	assert.Equal(t, 1, cals[0].Sessions)

	year, err := svc.ActivityHeatmap(2026, 0)
	require.NoError(t, err)
	assert.Len(t, year, 12)

	_, err = svc.ActivityHeatmap(2026, 13)
	assert.Error(t, err)
}

func TestServiceWithoutSession(t *testing.T) {
	var svc *Service
	_, err := svc.ListProtocols()
	assert.ErrorIs(t, err, errNoSession)
}

func TestToolCreateProtocolAndAddWidget(t *testing.T) {
	svc := newService(t)

	result := callTool(t, createProtocol(svc), "create_protocol", map[string]any{"name": "Miniprep"})
	require.False(t, result.IsError, toolText(t, result))
	var p protocol.Protocol
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &p))
	require.NotEmpty(t, p.ID)

	result = callTool(t, addWidget(svc), "add_widget", map[string]any{
		"protocol_id": p.ID,
		"type":        "checklist",
		"title":       "Buffers",
		"config":      `{"items":["P1","P2","P3"]}`,
	})
	require.False(t, result.IsError, toolText(t, result))
	assert.Contains(t, toolText(t, result), `"P3"`)

	result = callTool(t, addWidget(svc), "add_widget", map[string]any{
		"protocol_id": p.ID,
		"type":        "timer",
		"config":      `{duration`,
	})
	assert.True(t, result.IsError)

	result = callTool(t, listProtocols(svc), "list_protocols", nil)
	assert.Contains(t, toolText(t, result), `"widgetCount":1`)
}

func TestToolMissingArguments(t *testing.T) {
	svc := newService(t)
	for name, h := range map[string]server.ToolHandlerFunc{
		"get_protocol":    getProtocol(svc),
		"delete_protocol": deleteProtocol(svc),
		"claim_quest":     claimQuest(svc),
		"add_journal_log": addJournalLog(svc),
		"remove_widget":   removeWidget(svc),
	} {
		t.Run(name, func(t *testing.T) {
			result := callTool(t, h, name, map[string]any{})
			assert.True(t, result.IsError)
		})
	}
}

func TestToolJournalRoundTrip(t *testing.T) {
	svc := newService(t)

	result := callTool(t, addJournalLog(svc), "add_journal_log", map[string]any{"text": "ran PCR"})
	require.False(t, result.IsError, toolText(t, result))

	result = callTool(t, exportJournalDay(svc), "export_journal_day", map[string]any{})
	require.False(t, result.IsError, toolText(t, result))
	assert.Equal(t, "## 2026-03-09\nran PCR", toolText(t, result))

	result = callTool(t, activityHeatmap(svc), "activity_heatmap", map[string]any{"month": float64(3)})
	require.False(t, result.IsError, toolText(t, result))
	assert.Contains(t, toolText(t, result), `"Sessions":1`)
}

func TestToolClaimQuest(t *testing.T) {
	svc := newService(t)

	result := callTool(t, claimQuest(svc), "claim_quest", map[string]any{"id": "quest-protocol-1"})
	require.False(t, result.IsError, toolText(t, result))
	var res ClaimResult
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &res))
	assert.True(t, res.Claimed)
	assert.Equal(t, 50, res.Score)

	result = callTool(t, companionStatus(svc), "companion_status", nil)
	assert.Contains(t, toolText(t, result), `"score":50`)
}

func TestRouterServesMetrics(t *testing.T) {
	svc := newService(t)
	srv := server.NewMCPServer("test", "dev")
	registerTools(srv, svc)

	collector := metrics.New()
	collector.Register(svc.Session.Bus, 1)
	defer collector.Unregister()

	_, err := svc.AddJournalLog("counted")
	require.NoError(t, err)

	handler, path := Runner{Session: svc.Session, HTTPEndpointPath: "rpc"}.router(srv, collector)
	assert.Equal(t, "/rpc", path)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "benchquest_journal_logs_total 1")
}

func TestRunnerRequiresSession(t *testing.T) {
	err := Runner{}.Do(context.Background())
	assert.Error(t, err)

	sess := newService(t).Session
	err = Runner{Session: sess, Transport: "carrier-pigeon"}.Do(context.Background())
	assert.ErrorContains(t, err, "unknown MCP transport")
}
