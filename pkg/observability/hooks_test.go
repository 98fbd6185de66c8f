package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopReconcileHooks{}
	r.OnPassStart(ctx, "pass-1", 2)
	r.OnWarning(ctx, "pass-1", "View1", "SOCKET_NOT_FOUND")
	r.OnPassComplete(ctx, "pass-1", 1, time.Millisecond, nil)

	s := NoopStoreHooks{}
	s.OnLoad(ctx, "file", "shot_010", false)
	s.OnSave(ctx, "redis", "shot_010", 2048)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/reconcile")
	h.OnResponse(ctx, "POST", "/v1/reconcile", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Reconcile().(NoopReconcileHooks); !ok {
		t.Error("Reconcile() should return NoopReconcileHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customReconcile := &testReconcileHooks{}
	SetReconcileHooks(customReconcile)
	if Reconcile() != customReconcile {
		t.Error("SetReconcileHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Reconcile().(NoopReconcileHooks); !ok {
		t.Error("Reset() should restore NoopReconcileHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testReconcileHooks{}
	SetReconcileHooks(custom)
	SetReconcileHooks(nil)

	if Reconcile() != custom {
		t.Error("SetReconcileHooks(nil) should be ignored")
	}

	Reset()
}

type testReconcileHooks struct{ NoopReconcileHooks }
type testStoreHooks struct{ NoopStoreHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
