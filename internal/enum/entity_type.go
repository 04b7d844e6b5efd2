package enum

type EntityType string

const (
	TRANSACTION EntityType = "TRANSACTION"
	USER        EntityType = "USER"
)

func (t EntityType) String() string {
	return string(t)
}
