package contracts

import "time"

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 스냅샷, DB row에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 → S2 → S3 → S4
//   Ingest  Guardrails  Scoring  Overlay  Export

// Stage represents a pipeline stage
type Stage string

const (
	// StageIngest S0: 데이터 수집
	// 책임: FMP 데이터 수집, CompanyRecord 조립
	// 위치: internal/ingest/
	StageIngest Stage = "S0_INGEST"

	// StageGuardrails S1: 회계 가드레일 평가
	// 책임: Green/Amber/Red 분류
	// 위치: internal/guardrails/
	StageGuardrails Stage = "S1_GUARDRAILS"

	// StageScoring S2: 점수 계산 (핵심 엔진)
	// 책임: 피어그룹 정규화, 팩터 점수, 패널티, 종합 점수, 결정
	// 위치: internal/scoring/
	StageScoring Stage = "S2_SCORING"

	// StageOverlay S3: 기술적 오버레이
	// 책임: 모멘텀 시그널과 결정 결합
	// 위치: internal/technical/
	StageOverlay Stage = "S3_OVERLAY"

	// StageExport S4: 결과 저장 및 내보내기
	// 책임: DB 저장, CSV/JSON 출력
	// 위치: internal/storage/, internal/export/
	StageExport Stage = "S4_EXPORT"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	switch s {
	case StageIngest:
		return "S0"
	case StageGuardrails:
		return "S1"
	case StageScoring:
		return "S2"
	case StageOverlay:
		return "S3"
	case StageExport:
		return "S4"
	default:
		return "UNKNOWN"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageIngest,
		StageGuardrails,
		StageScoring,
		StageOverlay,
		StageExport,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}

// StageResult represents the result of a pipeline stage execution
type StageResult struct {
	Stage       Stage  `json:"stage"`
	Success     bool   `json:"success"`
	InputCount  int    `json:"input_count"`
	OutputCount int    `json:"output_count"`
	DurationMS  int64  `json:"duration_ms"`
	Error       string `json:"error,omitempty"`
}

// RunSummary records one complete screening run for persistence/audit
type RunSummary struct {
	RunID      string        `json:"run_id"`
	Date       time.Time     `json:"date"`
	ConfigHash string        `json:"config_hash"`
	StrategyID string        `json:"strategy_id"`
	Companies  int           `json:"companies"`
	Buys       int           `json:"buys"`
	Monitors   int           `json:"monitors"`
	Avoids     int           `json:"avoids"`
	Stages     []StageResult `json:"stages"`
	Duration   time.Duration `json:"duration"`
}

// ProgressEvent is pushed over the websocket feed while a run executes
type ProgressEvent struct {
	RunID     string    `json:"run_id"`
	Stage     Stage     `json:"stage"`
	Message   string    `json:"message"`
	Completed int       `json:"completed"`
	Total     int       `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}
