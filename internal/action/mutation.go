package action

// TargetType names the kind of record a mutation is aimed at. The applier
// routes on it; validators drop combinations they do not know.
type TargetType string

const (
	TargetCharacter TargetType = "character"
	TargetEntity    TargetType = "entity"
	TargetLocation  TargetType = "location"
	TargetInventory TargetType = "inventory"
	TargetGame      TargetType = "game"
)

// Inventory mutation fields. Inventory mutations operate on the owner's
// ordered {item_id, quantity} list rather than a named column.
const (
	FieldItemsAdd       = "items_add"
	FieldItemsRemoveOne = "items_remove_one"
	FieldItemsRemove    = "items_remove"
	FieldItemsTransform = "items_transform"
	FieldEquip          = "equip"
	FieldUnequip        = "unequip"
)

// Mutation is one atomic, named field change proposed against a persistent
// record. Mutations are applied as an ordered list, not a transaction:
// a failing mutation is logged and skipped, siblings still land.
type Mutation struct {
	TargetType TargetType
	TargetID   string
	Field      string
	OldValue   any
	NewValue   any
}

// ItemChange is the payload for items_add mutations.
type ItemChange struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// ItemTransform is the payload for items_transform mutations: remove one
// of RemoveID and add one of AddID in a single inventory write.
type ItemTransform struct {
	RemoveID string `json:"remove_id"`
	AddID    string `json:"add_id"`
}

// EquipChange is the payload for equip and unequip mutations.
type EquipChange struct {
	Slot   string `json:"slot"`
	ItemID string `json:"item_id,omitempty"`
}
