package internal

type OwnershipGroup string

const (
	GroupKeslow       OwnershipGroup = "KESLOW"
	GroupConsigner    OwnershipGroup = "CONSIGNER"
	GroupUnclassified OwnershipGroup = "UNCLASSIFIED"
)

// CellState is one occupancy cell of the availability grid. A cell counts as
// free when Value is empty and Background is white.
type CellState struct {
	Value      string
	Background string
}

// EquipmentRow is one row of the availability grid. Cells are aligned with the
// date header columns handed to the matcher, index for index.
type EquipmentRow struct {
	Row      int
	Location string
	Type     string
	Notes    string
	Cells    []CellState
}

type MatchRow struct {
	Barcode  string
	Serial   string
	Type     string
	Location string
	Notes    string
	Group    OwnershipGroup
}

// IdentityKey is the tuple of fields that defines "same logical asset" for
// grouping and cross-table joins. The barcode is deliberately excluded.
type IdentityKey struct {
	UUID      string
	Equipment string
	Category  string
	Status    string
	Owner     string
	Location  string
}

// AssetRow is one row of a raw asset export in the nine-column source schema:
// Asset ID, UUID, Equipment, Category, Barcode, Asset Serial, Status, Owner,
// Location.
type AssetRow struct {
	AssetID     string
	UUID        string
	Equipment   string
	Category    string
	Barcode     string
	AssetSerial string
	Status      string
	Owner       string
	Location    string
}

func (r AssetRow) Key() IdentityKey {
	return IdentityKey{
		UUID:      r.UUID,
		Equipment: r.Equipment,
		Category:  r.Category,
		Status:    r.Status,
		Owner:     r.Owner,
		Location:  r.Location,
	}
}

// MergedRecord holds the first-seen identity values for a key plus every
// distinct barcode observed for it, in first-insertion order.
type MergedRecord struct {
	Key      IdentityKey
	Barcodes []string
}

type RowUpdate struct {
	Row    int
	Values []string
}

// ReconciliationDiff partitions the identities of two tables: ToDelete holds
// current-table row indices absent from the desired table, ToAdd holds desired
// rows absent from the current table, ToUpdate holds matched rows whose values
// differ. An identity lands in exactly one bucket.
type ReconciliationDiff struct {
	ToDelete []int
	ToAdd    [][]string
	ToUpdate []RowUpdate
}

type SyncPhase string

const (
	PhaseDelete SyncPhase = "delete"
	PhaseAdd    SyncPhase = "add"
	PhaseUpdate SyncPhase = "update"
)

// SyncCursor is the resumption state of the dictionary sync. The phase is
// persisted alongside the row index so an interrupted run resumes the right
// scan instead of guessing.
type SyncCursor struct {
	Phase SyncPhase `json:"phase"`
	Row   int       `json:"row"`
}

type CompareResult struct {
	OnlyInA          []string
	OnlyInB          []string
	IntersectionSize int
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

type MailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}
