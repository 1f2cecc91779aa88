// Package report classifies routing resources and writes the plain text dumps consumed by sibling tools.
package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/rapidroute/rapidroute-go/route"
)

// Category is the physical resource class of a routing node.
type Category int

const (
	CategoryUnclassified Category = iota
	CategoryClock
	CategorySDQBuffer
	CategoryIMUXBuffer
	CategoryBypass
	CategoryBounce
	CategoryIMUX
	CategoryLogicOut
	CategoryLong
	CategoryQuad
	CategoryDouble
	CategorySingle
	CategoryNode

	NumCategories = int(CategoryNode) + 1
)

var categoryNames = [NumCategories]string{
	"unclassified",
	"clock",
	"sdq buffer",
	"imux buffer",
	"bypass",
	"bounce",
	"imux",
	"logic out",
	"long",
	"quad",
	"double",
	"single",
	"node",
}

func (c Category) String() string {
	if c < 0 || int(c) >= NumCategories {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

type classRule struct {
	category Category
	pattern  *regexp.Regexp
}

// classRules is matched against the wire part of a node name, first match wins.
// Buffers come before the generic node and imux rules since their names contain both.
var classRules = []classRule{
	{CategoryClock, regexp.MustCompile(`GCLK`)},
	{CategorySDQBuffer, regexp.MustCompile(`INT_(NODE|INT)_SDQ_\d+_INT_OUT\d+`)},
	{CategoryIMUXBuffer, regexp.MustCompile(`INT_NODE_IMUX_\d+_INT_OUT\d+`)},
	{CategoryBypass, regexp.MustCompile(`BYPASS_[EW]\d+`)},
	{CategoryBounce, regexp.MustCompile(`^BOUNCE_`)},
	{CategoryIMUX, regexp.MustCompile(`^IMUX_`)},
	{CategoryLogicOut, regexp.MustCompile(`^LOGIC_OUTS`)},
	{CategoryLong, regexp.MustCompile(`^(EE|WW|NN|SS)12(_|$)`)},
	{CategoryQuad, regexp.MustCompile(`^(EE|WW|NN|SS)4(_|$)`)},
	{CategoryDouble, regexp.MustCompile(`^(EE|WW|NN|SS)2(_|$)`)},
	{CategorySingle, regexp.MustCompile(`^(EE|WW|NN|SS)1(_|$)`)},
	{CategoryNode, regexp.MustCompile(`^INT_NODE_`)},
}

// Classify returns the resource class of node, or CategoryUnclassified if no rule matches.
func Classify(node route.NodeID) Category {
	wire := node.WireName()
	for _, rule := range classRules {
		if rule.pattern.MatchString(wire) {
			return rule.category
		}
	}
	return CategoryUnclassified
}

// Summary is a per-category node count.
type Summary struct {
	Counts       [NumCategories]int
	Unclassified []route.NodeID // not included in Counts
}

// Tally classifies each node and counts them per category.
// Nodes matching no rule are logged and listed in Unclassified.
func Tally(nodes []route.NodeID) *Summary {
	sum := &Summary{}
	for _, n := range nodes {
		c := Classify(n)
		if c == CategoryUnclassified {
			klog.Warningf("report: %v: %v", route.ErrUnclassifiedNode, n)
			sum.Unclassified = append(sum.Unclassified, n)
			continue
		}
		sum.Counts[c]++
	}
	return sum
}

// Total returns the number of classified nodes.
func (sum *Summary) Total() int {
	total := 0
	for _, n := range sum.Counts {
		total += n
	}
	return total
}

// Err returns route.ErrUnclassifiedNode (wrapped) if any node went unclassified.
func (sum *Summary) Err() error {
	if len(sum.Unclassified) == 0 {
		return nil
	}
	return errors.Wrapf(route.ErrUnclassifiedNode, "%d nodes, first %v", len(sum.Unclassified), sum.Unclassified[0])
}

// String lists the nonzero counts in category order, one per line.
func (sum *Summary) String() string {
	b := strings.Builder{}
	for c := CategoryClock; int(c) < NumCategories; c++ {
		if sum.Counts[c] == 0 {
			continue
		}
		fmt.Fprintf(&b, "%-12s %4d\n", c.String()+":", sum.Counts[c])
	}
	if len(sum.Unclassified) > 0 {
		fmt.Fprintf(&b, "%-12s %4d\n", "unclassified:", len(sum.Unclassified))
	}
	return b.String()
}
