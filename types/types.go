package types

// AppType specifies app type.
type AppType string

// Matrix AppType enums.
const (
	Matrix AppType = "matrix"
)

// SysVar specifies the system variables.
type SysVar string

// SysVarSchemaVersion SysVar enums.
const (
	SysVarSchemaVersion SysVar = "schema_version"
)

// EarningType classifies a ledger record by the upline level that earned it.
type EarningType string

// EarningType enums.
const (
	EarningLevel1   EarningType = "LEVEL1"
	EarningLevel2   EarningType = "LEVEL2"
	EarningLevel3   EarningType = "LEVEL3"
	EarningDividend EarningType = "DIVIDEND"
	EarningOther    EarningType = "OTHER"
)

// PoolFlow specifies the direction of a dividend pool record.
type PoolFlow string

// PoolFlow enums.
const (
	PoolFlowIn  PoolFlow = "IN"
	PoolFlowOut PoolFlow = "OUT"
)

// PositionStatus specifies the lifecycle state of a matrix position.
type PositionStatus string

// PositionStatus enums.
const (
	PositionActive    PositionStatus = "ACTIVE"
	PositionCompleted PositionStatus = "COMPLETED"
)

// Relation classifies a rendered tree node relative to the viewer.
type Relation string

// Relation enums.
const (
	RelationSelf           Relation = "SELF"
	RelationDirectPartner  Relation = "DIRECT_PARTNER"
	RelationTeamMember     Relation = "TEAM_MEMBER"
	RelationUplineOverflow Relation = "UPLINE_OVERFLOW"
	RelationBottomOverflow Relation = "BOTTOM_OVERFLOW"
)

// MatrixWidth is the child capacity of every position.
const MatrixWidth = 3

// CompletionDepth is the deepest relative level that gates completion.
const CompletionDepth = 3

// MatrixCapacity is the descendant count over levels 1-3 (3+9+27) that
// completes a position.
const MatrixCapacity = 39
