package hcl_adapter

import (
	"path/filepath"
	"testing"

	"github.com/specialistvlad/missiongraph/internal/config"
	"github.com/specialistvlad/missiongraph/internal/pintype"
	"github.com/specialistvlad/missiongraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestLoader_KindsAndRecords(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.Context(t)
	root := testutil.WriteFiles(t, map[string]string{
		"kinds/chase.hcl": `
			kind "ChaseQuest" {
			  parent       = "SideQuest"
			  category     = "Side"
			  display_name = "Chase"
			  hide_parent  = true
			  record       = "ChaseData"
			}
			kind "OldChase" {
			  parent     = "ChaseQuest"
			  deprecated = "use ChaseQuest"
			}
			kind "Flagged" {
			  parent     = "ChaseQuest"
			  deprecated = true
			}
		`,
		"records/chase.hcl": `
			record "ChaseData" {
			  policy = "continue"
			  field "target" {
			    type    = name
			    default = "Bandit"
			  }
			  field "speed" {
			    type     = float
			    advanced = true
			    default  = 2.5
			  }
			  field "waypoints" {
			    type     = list(record(Vector))
			    settable = false
			  }
			  field "secret" {
			    type     = string
			    show_pin = false
			  }
			}
			record "Tag" {
			  policy = "stop_depth"
			  field "name" { type = name }
			}
		`,
		"notes.txt": "ignored",
	})

	// --- Act ---
	model, err := NewLoader().Load(ctx, root)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, model.Kinds, 3)

	chase := model.Kind("ChaseQuest")
	require.NotNil(t, chase)
	assert.Equal(t, "SideQuest", chase.Parent)
	assert.Equal(t, "Side", chase.Category)
	assert.Equal(t, "Chase", chase.DisplayName)
	assert.True(t, chase.HideParent)
	assert.False(t, chase.IsDeprecated())
	assert.Equal(t, filepath.Join(root, "kinds", "chase.hcl"), chase.Source)

	assert.Equal(t, "use ChaseQuest", model.Kind("OldChase").Deprecated)
	assert.True(t, model.Kind("Flagged").IsDeprecated())

	rec := model.Records["ChaseData"]
	require.NotNil(t, rec)
	assert.Equal(t, config.PolicyContinue, rec.Policy)
	require.Len(t, rec.Fields, 4)

	names := []string{rec.Fields[0].Name, rec.Fields[1].Name, rec.Fields[2].Name, rec.Fields[3].Name}
	assert.Equal(t, []string{"target", "speed", "waypoints", "secret"}, names, "field order must be kept")

	require.NotNil(t, rec.Fields[0].Default)
	assert.Equal(t, "Bandit", *rec.Fields[0].Default)
	require.NotNil(t, rec.Fields[1].Default)
	assert.Equal(t, "2.5", *rec.Fields[1].Default)
	assert.True(t, rec.Fields[1].Advanced)

	assert.Equal(t, config.TypeRef{Name: "Vector", Record: true, Container: pintype.Array}, rec.Fields[2].Type)
	assert.False(t, rec.Fields[2].Settable)
	assert.Nil(t, rec.Fields[2].Default)
	assert.False(t, rec.Fields[3].ShowPin)
	assert.True(t, rec.Fields[0].ShowPin)

	assert.Equal(t, config.PolicyStopDepth, model.Records["Tag"].Policy)
}

func TestLoader_Mission(t *testing.T) {
	ctx, _ := testutil.Context(t)
	root := testutil.WriteFiles(t, map[string]string{
		"intro.hcl": `
			mission "intro" {
			  node "entry" "start" {
			    position = [10, 20]
			  }
			  node "main_quest" "meet" {
			    class = "MainQuest"
			    data  = { target = "bob", count = 2 }
			  }
			  node "side_quest" "detour" {
			    class     = "SideQuest"
			    parent    = "meet"
			    read_only = true
			  }
			  link {
			    from = "start.Out"
			    to   = "meet.In"
			  }
			}
		`,
	})

	model, err := NewLoader().Load(ctx, filepath.Join(root, "intro.hcl"))
	require.NoError(t, err)
	require.Len(t, model.Missions, 1)

	m := model.Missions[0]
	assert.Equal(t, "intro", m.Name)
	require.Len(t, m.Nodes, 3)

	start := m.Nodes[0]
	assert.Equal(t, "entry", start.Kind)
	assert.Equal(t, 10.0, start.X)
	assert.Equal(t, 20.0, start.Y)
	assert.True(t, start.Data.IsNull())

	meet := m.Nodes[1]
	require.True(t, meet.Data.Type().IsObjectType())
	assert.Equal(t, cty.StringVal("bob"), meet.Data.GetAttr("target"))

	detour := m.Nodes[2]
	assert.Equal(t, "meet", detour.Parent)
	assert.True(t, detour.ReadOnly)

	require.Len(t, m.Links, 1)
	assert.Equal(t, config.Link{From: "start.Out", To: "meet.In"}, *m.Links[0])
}

func TestLoader_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "syntax error",
			files:   map[string]string{"bad.hcl": `kind "A" {`},
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "missing parent",
			files:   map[string]string{"a.hcl": `kind "A" {}`},
			wantErr: "failed to decode HCL file",
		},
		{
			name: "duplicate kind across files",
			files: map[string]string{
				"a.hcl": `kind "A" { parent = "Root" }`,
				"b.hcl": `kind "A" { parent = "Root" }`,
			},
			wantErr: "kind 'A' declared in both",
		},
		{
			name:    "unknown policy",
			files:   map[string]string{"r.hcl": `record "R" { policy = "sideways" }`},
			wantErr: "unknown recursion policy",
		},
		{
			name:    "nested container",
			files: map[string]string{"r.hcl": `
				record "R" {
				  field "f" { type = list(list(int)) }
				}`},
			wantErr: "nested containers",
		},
		{
			name:    "bad deprecated value",
			files: map[string]string{"k.hcl": `
				kind "K" {
				  parent     = "Root"
				  deprecated = 3
				}`},
			wantErr: "'deprecated' must be a bool or a message string",
		},
		{
			name:    "bad position",
			files: map[string]string{"m.hcl": `
				mission "m" {
				  node "knot" "k" { position = [1] }
				}`},
			wantErr: "position needs exactly two coordinates",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := testutil.Context(t)
			root := testutil.WriteFiles(t, tc.files)

			_, err := NewLoader().Load(ctx, root)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoader_MissingPathIsNotAnError(t *testing.T) {
	ctx, _ := testutil.Context(t)
	model, err := NewLoader().Load(ctx, filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, model.Kinds)
	assert.Empty(t, model.Records)
}
