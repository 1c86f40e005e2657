package handler

type ContextKey string

var (
	RoleCtxKey         ContextKey = "role"
	SubCtxKey          ContextKey = "sub"
	MyInfoCtx          ContextKey = "myInfo"
	UserInfoCtx        ContextKey = "userInfo"
	DriverCtx          ContextKey = "driver"
	TripCtx            ContextKey = "trip"
	OptimizationRunCtx ContextKey = "optimizationRun"
)
