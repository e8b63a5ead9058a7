package handler

type ContextKey string

var (
	RoleCtxKey      ContextKey = "role"
	SubCtxKey       ContextKey = "sub"
	MyInfoCtx       ContextKey = "myInfo"
	UserInfoCtx     ContextKey = "userInfo"
	SectorCtx       ContextKey = "sector"
	WorkerCtx       ContextKey = "worker"
	RuleCtx         ContextKey = "rule"
	SchedulePlanCtx ContextKey = "schedulePlan"
	ConvocationCtx  ContextKey = "convocation"
)
