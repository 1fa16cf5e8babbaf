package kernel

// ApplicantID identifies a bootcamp applicant.
type ApplicantID string

func NewApplicantID(id string) ApplicantID { return ApplicantID(id) }
func (a ApplicantID) String() string       { return string(a) }
func (a ApplicantID) IsEmpty() bool        { return string(a) == "" }

// BatchID identifies a bulk mailing batch.
type BatchID string

func NewBatchID(id string) BatchID { return BatchID(id) }
func (b BatchID) String() string   { return string(b) }
func (b BatchID) IsEmpty() bool    { return string(b) == "" }
