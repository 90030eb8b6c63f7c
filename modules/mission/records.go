package mission

// Vector is a position in world space.
type Vector struct {
	X float64 `cty:"x"`
	Y float64 `cty:"y"`
	Z float64 `cty:"z"`
}

// LinearColor is an RGBA colour with float components.
type LinearColor struct {
	R float64 `cty:"r"`
	G float64 `cty:"g"`
	B float64 `cty:"b"`
	A float64 `cty:"a" mission:"default=1.0"`
}

// GameplayTag names a tag of the game's tag hierarchy.
type GameplayTag struct {
	Name string `cty:"tag_name" mission:"type=name"`
}

type Reward struct {
	Experience int         `cty:"experience"`
	Gold       int         `cty:"gold"`
	Items      []string    `cty:"items" mission:"type=name"`
	Unlocks    GameplayTag `cty:"unlocks"`
}

// Presentation is flattened into the record that contains it.
type Presentation struct {
	Title       string      `cty:"title" mission:"type=text,default=New Mission"`
	Description string      `cty:"description" mission:"type=text" tooltip:"Shown in the quest log."`
	Tint        LinearColor `cty:"tint" mission:"advanced"`
}

type EntryData struct {
	Presentation Presentation `cty:"presentation"`
	AutoStart    bool `cty:"bAutoStart"`
}

type QuestData struct {
	Presentation Presentation      `cty:"presentation"`
	Location     Vector            `cty:"location"`
	Reward       Reward            `cty:"reward"`
	Repeatable   bool              `cty:"bRepeatable"`
	Requirements []GameplayTag     `cty:"requirements"`
	Metadata     map[string]string `cty:"metadata" mission:"readonly"`
	EditorNote   string            `cty:"editor_note" mission:"hidden"`
}

type ObjectiveData struct {
	Description string  `cty:"description" mission:"type=text"`
	Target      string  `cty:"target" mission:"type=name"`
	Count       int     `cty:"count" mission:"default=1"`
	Optional    bool    `cty:"bOptional"`
	TimeLimit   float64 `cty:"time_limit" tooltip:"Seconds; 0 means unlimited."`
}
