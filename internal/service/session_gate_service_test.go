package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/maamriaabderahmene/greve-ensta/internal/model"
	pkgerrors "github.com/maamriaabderahmene/greve-ensta/pkg/errors"
)

func setupGate(policy SessionGatePolicy) (SessionGateService, *mockSessionControlRepo) {
	repo, m := newMockRepos()
	return NewSessionGateService(repo, policy, nil, zap.NewNop()), m.sessionControl
}

var defaultGatePolicy = SessionGatePolicy{FailOpen: true, MaterializeOnRead: true}

func TestSessionGate_MissingRecordIsEnabledAndMaterialized(t *testing.T) {
	gate, scRepo := setupGate(defaultGatePolicy)
	ctx := context.Background()

	enabled, err := gate.IsEnabled(ctx, model.Session3)
	if err != nil {
		t.Fatalf("IsEnabled 应成功: %v", err)
	}
	if !enabled {
		t.Error("无记录时应视为开启")
	}

	sc, ok := scRepo.controls[model.Session3]
	if !ok {
		t.Fatal("首次读取后应存在显式记录")
	}
	if !sc.IsEnabled || sc.UpdatedBy != gateSystemActor {
		t.Errorf("补建记录字段错误: %+v", sc)
	}

	// 第二次读取命中已存在记录，不再补建
	if _, err := gate.IsEnabled(ctx, model.Session3); err != nil {
		t.Fatalf("再次读取失败: %v", err)
	}
	if scRepo.createCalls != 1 {
		t.Errorf("期望仅补建一次，实际 %d", scRepo.createCalls)
	}
}

func TestSessionGate_DuplicateMaterializationIgnored(t *testing.T) {
	gate, scRepo := setupGate(defaultGatePolicy)
	scRepo.errCreate = fmt.Errorf("%w: concurrent insert", pkgerrors.ErrDuplicate)

	enabled, err := gate.IsEnabled(context.Background(), model.Session2)
	if err != nil {
		t.Fatalf("唯一键冲突不应导致读取失败: %v", err)
	}
	if !enabled {
		t.Error("应返回缺省开启")
	}
}

func TestSessionGate_MaterializeFailureDoesNotFailRead(t *testing.T) {
	gate, scRepo := setupGate(defaultGatePolicy)
	scRepo.errCreate = errors.New("read-only replica")

	enabled, err := gate.IsEnabled(context.Background(), model.Session2)
	if err != nil || !enabled {
		t.Errorf("补建失败不影响读取，实际 (%v, %v)", enabled, err)
	}
}

func TestSessionGate_PolicyFlags(t *testing.T) {
	gate, scRepo := setupGate(SessionGatePolicy{FailOpen: false, MaterializeOnRead: false})

	enabled, err := gate.IsEnabled(context.Background(), model.Session1)
	if err != nil {
		t.Fatalf("IsEnabled 应成功: %v", err)
	}
	if enabled {
		t.Error("FailOpen=false 时缺失记录应视为关闭")
	}
	if scRepo.createCalls != 0 {
		t.Error("MaterializeOnRead=false 时不应补建")
	}
}

func TestSessionGate_StoredRecordWins(t *testing.T) {
	gate, scRepo := setupGate(defaultGatePolicy)
	scRepo.controls[model.Session4] = &model.SessionControl{Session: model.Session4, IsEnabled: false}

	enabled, _ := gate.IsEnabled(context.Background(), model.Session4)
	if enabled {
		t.Error("显式关闭的时段应返回 false")
	}
}

func TestSessionGate_ReadErrorPropagates(t *testing.T) {
	gate, scRepo := setupGate(defaultGatePolicy)
	scRepo.errGet = errors.New("connection reset")

	if _, err := gate.IsEnabled(context.Background(), model.Session1); err == nil {
		t.Error("存储读取失败应返回错误")
	}
}

func TestSessionGate_StoreTimeoutFailsClosed(t *testing.T) {
	gate, scRepo := setupGate(SessionGatePolicy{FailOpen: true, MaterializeOnRead: true, StoreTimeout: 10 * time.Millisecond})
	scRepo.block = true

	if _, err := gate.List(context.Background()); !errors.Is(err, pkgerrors.ErrDependency) {
		t.Errorf("List 期望 ErrDependency，实际 %v", err)
	}
	if _, err := gate.SetEnabled(context.Background(), model.Session1, false, "admin"); !errors.Is(err, pkgerrors.ErrDependency) {
		t.Errorf("SetEnabled 期望 ErrDependency，实际 %v", err)
	}
}

func TestSessionGate_ListInitializesAllFive(t *testing.T) {
	gate, scRepo := setupGate(defaultGatePolicy)
	scRepo.controls[model.Session2] = &model.SessionControl{Session: model.Session2, IsEnabled: false, UpdatedBy: "admin@ensta.edu.dz"}

	list, err := gate.List(context.Background())
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list) != 5 {
		t.Fatalf("期望 5 个时段，实际 %d", len(list))
	}
	for i, s := range model.AllSessions {
		if list[i].Session != s.String() {
			t.Errorf("第 %d 项期望 %s，实际 %s", i, s, list[i].Session)
		}
	}
	if list[2].IsEnabled {
		t.Error("session2 应保持关闭")
	}
	if len(scRepo.controls) != 5 {
		t.Errorf("缺失的时段应全部补建，实际 %d 条", len(scRepo.controls))
	}
}

func TestSessionGate_SetEnabled(t *testing.T) {
	gate, scRepo := setupGate(defaultGatePolicy)

	resp, err := gate.SetEnabled(context.Background(), model.Session1, false, "admin@ensta.edu.dz")
	if err != nil {
		t.Fatalf("SetEnabled 应成功: %v", err)
	}
	if resp.IsEnabled || resp.UpdatedBy != "admin@ensta.edu.dz" {
		t.Errorf("响应错误: %+v", resp)
	}
	if sc := scRepo.controls[model.Session1]; sc == nil || sc.IsEnabled || sc.UpdatedBy != "admin@ensta.edu.dz" {
		t.Errorf("存储记录错误: %+v", sc)
	}

	if _, err := gate.SetEnabled(context.Background(), "session5", true, "admin"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("期望 ErrInvalidSession，实际 %v", err)
	}
}
