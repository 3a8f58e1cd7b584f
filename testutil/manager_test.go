package testutil_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kbukum/restadapter/component"
	"github.com/kbukum/restadapter/testutil"
)

func TestManager_Lifecycle(t *testing.T) {
	m := testutil.NewManager(context.Background())
	var stopOrder []string
	a, b := newMockComponent("a"), newMockComponent("b")
	a.stopOrder, b.stopOrder = &stopOrder, &stopOrder

	if err := m.Add(a); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := m.Add(b); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := m.Add(newMockComponent("a")); err == nil {
		t.Error("expected duplicate name to be rejected")
	}

	if err := m.StartAll(); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	for _, h := range m.Health() {
		if h.Status != component.StatusHealthy {
			t.Errorf("%s should be healthy, got %s", h.Name, h.Status)
		}
	}

	if err := m.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if strings.Join(stopOrder, ",") != "b,a" {
		t.Errorf("expected reverse stop order, got %v", stopOrder)
	}
}

func TestManager_GetAndComponents(t *testing.T) {
	m := testutil.NewManager(context.Background())
	_ = m.Add(newMockComponent("server"))

	if m.Get("server") == nil {
		t.Error("expected registered component")
	}
	if m.Get("missing") != nil {
		t.Error("expected nil for unknown component")
	}
	if len(m.Components()) != 1 {
		t.Errorf("expected 1 component, got %d", len(m.Components()))
	}
}

func TestManager_ResetAll(t *testing.T) {
	m := testutil.NewManager(context.Background())
	a, b := newMockComponent("a"), newMockComponent("b")
	_ = m.Add(a)
	_ = m.Add(b)

	if err := m.ResetAll(); err != nil {
		t.Fatalf("ResetAll: %v", err)
	}
	if !a.resetCalled || !b.resetCalled {
		t.Error("every component should be reset")
	}

	b.resetErr = errors.New("locked")
	if err := m.ResetAll(); err == nil || !strings.Contains(err.Error(), "b") {
		t.Errorf("expected reset error naming b, got %v", err)
	}
}

func TestManager_StopErrorsJoined(t *testing.T) {
	m := testutil.NewManager(context.Background())
	a := newMockComponent("a")
	a.stopErr = errors.New("stuck")
	_ = m.Add(a)
	_ = m.StartAll()

	if err := m.StopAll(); err == nil {
		t.Error("expected stop error")
	}
}
