package blocks

const (
	ReturnTypeDict = "dict"
	ReturnTypeList = "list"
)

// Field names clients may ask for via requested_fields. type and
// display_name are always returned and never need requesting.
const (
	FieldChildren        = "children"
	FieldGraded          = "graded"
	FieldFormat          = "format"
	FieldStudentViewData = "student_view_data"
	FieldMultiDevice     = "student_view_multi_device"
	FieldStudentViewURL  = "student_view_url"
	FieldLMSWebURL       = "lms_web_url"
	FieldBlockCounts     = "block_counts"
)

// Config is the resolved, immutable per-request pipeline configuration.
type Config struct {
	Viewer Viewer

	// RequestedUser is the username the response should be computed for
	// when it differs from the session user. Only course staff may set it
	// to someone else; enforcement happens once the course is known.
	RequestedUser string

	// Depth bounds structural retention below root; DepthAll disables it.
	Depth    int
	DepthAll bool

	// NavDepth is the navigational collapsing level, or -1 when the client
	// did not ask for collapsing.
	NavDepth int

	BlockCounts     map[string]struct{}
	StudentViewData map[string]struct{}
	RequestedFields map[string]struct{}
	ReturnType      string
}

func (c Config) fieldRequested(name string) bool {
	_, ok := c.RequestedFields[name]
	return ok
}
