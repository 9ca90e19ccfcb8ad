// internal/model/model.go
package model

// All lists every model managed by the schema migration, parents first.
func All() []interface{} {
	return []interface{}{
		&PartnerOrganization{},
		&Admin{},
		&AdminCredential{},
		&Application{},
		&ApplicationDemographic{},
		&ApplicationDevice{},
		&ApplicationConnectivity{},
		&ApplicationReview{},
		&ApprovedApplicant{},
		&MoaSubmission{},
		&MoaReview{},
		&Scholar{},
		&ScholarStatusChange{},
		&Certification{},
		&Job{},
		&AuditLog{},
	}
}
