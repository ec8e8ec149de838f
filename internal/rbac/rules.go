package rbac

const (
	PermSkillView      = "skill:view"
	PermSkillManage    = "skill:manage"
	PermQuestionView   = "question:view"
	PermQuestionManage = "question:manage"
	PermOptionManage   = "option:manage"
	PermQuizTake       = "quiz:take"
	PermReportViewOwn  = "report:view-own"
	PermReportViewAll  = "report:view-all"
	PermAuditView      = "audit:view"
)

// RolePermissions is the default policy. Patterns ending in "*" match by
// prefix.
var RolePermissions = map[string][]string{
	"user": {
		PermSkillView,
		PermQuestionView,
		PermQuizTake,
		PermReportViewOwn,
	},
	"admin": {"*"},
}
