package config

// JobType tags a queued unit of Google Business Profile work.
type JobType string

const (
	JobTypeCreateBusinessProfile    JobType = "create_business_profile"
	JobTypeUpdateBusinessProfile    JobType = "update_business_profile"
	JobTypePublishPost              JobType = "publish_post"
	JobTypeGenerateVisibilityReport JobType = "generate_visibility_report"
)

// JobStatus is the lifecycle state of a job row.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusDone       JobStatus = "done"
	JobStatusError      JobStatus = "error"
)

var AllowedJobTypes = []JobType{
	JobTypeCreateBusinessProfile,
	JobTypeUpdateBusinessProfile,
	JobTypePublishPost,
	JobTypeGenerateVisibilityReport,
}
