package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 메트릭 라벨, ledger row에서 이 상수를 사용해야 함
//
// 파이프라인 흐름 (연도별):
//   split → clean → zone → bin → render → export → publish

// Stage represents a pipeline stage
type Stage string

const (
	// StageSplit 통합 데이터셋을 연도별 파일로 분할
	// 위치: internal/splitter/
	StageSplit Stage = "split"

	// StageClean 필수 컬럼 확인, 숫자 변환, 불량 행 제거
	// 위치: internal/cleaner/
	StageClean Stage = "clean"

	// StageZone 스트라이크 존 상/하단 중앙값 추정
	// 위치: internal/zone/
	StageZone Stage = "zone"

	// StageBin 위치 격자별 스트라이크 비율
	// 위치: internal/binning/
	StageBin Stage = "bin"

	// StageRender scatter / heatmap PNG 생성
	// 위치: internal/render/
	StageRender Stage = "render"

	// StageExport 정제된 레코드 Parquet 저장
	// 위치: internal/export/
	StageExport Stage = "export"

	// StagePublish 결과물 S3 업로드
	// 위치: internal/publish/
	StagePublish Stage = "publish"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// Description returns Korean description of the stage
func (s Stage) Description() string {
	switch s {
	case StageSplit:
		return "연도별 분할"
	case StageClean:
		return "레코드 정제"
	case StageZone:
		return "스트라이크 존 추정"
	case StageBin:
		return "격자 집계"
	case StageRender:
		return "시각화"
	case StageExport:
		return "Parquet 저장"
	case StagePublish:
		return "S3 업로드"
	default:
		return "알 수 없음"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageSplit,
		StageClean,
		StageZone,
		StageBin,
		StageRender,
		StageExport,
		StagePublish,
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
