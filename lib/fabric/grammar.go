package fabric

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
	"github.com/rapidroute/rapidroute-go/route"
)

/***

Fabric description format:

	# comment to end of line
	INT_X0Y0/LOGIC_OUTS_E0 -> INT_X0Y0/INT_NODE_SDQ_4_INT_OUT0, INT_X0Y0/BYPASS_E3
	INT_X0Y0/BYPASS_E3 -> INT_X0Y0/IMUX_E12
	lock INT_X0Y0/BOUNCE_E_0_FT1

Each edge statement lists the resources immediately reachable from the node on the left.
A lock statement marks resources as in use so they never appear in a fan-out.

***/

type fabricExpr struct {
	Stmts []*stmtExpr `parser:"@@*"`
}

type stmtExpr struct {
	Lock *lockExpr `parser:"  @@"`
	Edge *edgeExpr `parser:"| @@"`
}

type lockExpr struct {
	Nodes []string `parser:"\"lock\" @Node (\",\" @Node)*"`
}

type edgeExpr struct {
	From string   `parser:"@Node \"->\""`
	To   []string `parser:"@Node (\",\" @Node)*"`
}

var fabricLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "Node", Pattern: `[A-Za-z0-9_./\[\]:]+`},
	{Name: "Punct", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var parseFabricExpr = participle.MustBuild[fabricExpr](
	participle.Lexer(fabricLexer),
	participle.Elide("Comment", "Whitespace"),
)

// Parse reads a fabric description into a new Fabric.
func Parse(desc string) (*Fabric, error) {
	expr, err := parseFabricExpr.ParseString("", desc)
	if err != nil {
		return nil, errors.Wrap(route.ErrBadFabric, err.Error())
	}

	fab := New()
	for _, stmt := range expr.Stmts {
		switch {
		case stmt.Lock != nil:
			for _, n := range stmt.Lock.Nodes {
				fab.Lock(route.NodeID(n))
			}
		case stmt.Edge != nil:
			for _, to := range stmt.Edge.To {
				if to == stmt.Edge.From {
					return nil, errors.Wrapf(route.ErrBadFabric, "self loop on %q", to)
				}
				fab.AddEdge(route.NodeID(stmt.Edge.From), route.NodeID(to))
			}
		}
	}
	return fab, nil
}
