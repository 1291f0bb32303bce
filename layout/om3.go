package layout

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// PoolLayout is one assignment of processor ranges to pools. Tasks
// holds each pool's task count and RootPE the first processor of its
// range, with pools packed back to back from processor zero.
type PoolLayout struct {
	Ncpus  int
	Tasks  map[string]int
	RootPE map[string]int
}

// preferredPools is the range assignment order used when no explicit
// pool order is given.
var preferredPools = []string{"shared", "ocn", "wav", "ice", "atm", "rof", "cpl"}

// OM3Generator enumerates processor layouts for ACCESS-OM3 runs on one
// scheduler queue. A node divides into equal allocation blocks, and a
// layout assigns every block of every node to a pool.
type OM3Generator struct {
	queue Queue
	p     params
}

// NewOM3Generator returns a generator for the named queue. The queue's
// cores per node must divide evenly into the configured blocks per
// node.
func NewOM3Generator(queue string, opts ...Option) (*OM3Generator, error) {
	q, err := LookupQueue(queue)
	if err != nil {
		return nil, err
	}

	p := apply(om3Defaults(), opts...)

	if p.blocksPerNode < 1 || q.Cores%p.blocksPerNode != 0 {
		return nil, ErrConstraint.With(
			slog.Int("node_cores", q.Cores),
			slog.Int("blocks_per_node", p.blocksPerNode),
		)
	}

	return &OM3Generator{queue: q, p: p}, nil
}

// Generate enumerates every valid layout for each node count. poolMap
// assigns submodels to pools, and each node count maps to its layouts
// in block allocation order. Ratio constraints compare a pool's block
// count against the baseline pool's, and [WithMinBlocks] reserves a
// floor per pool.
func (g *OM3Generator) Generate(nodes []int, poolMap map[string]string, opts ...Option) (map[int][]PoolLayout, error) {
	p := apply(g.p, opts...)

	pools, err := poolsInUse(poolMap, p.poolOrder)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(pools, p.baseline) {
		return nil, ErrConstraint.With(slog.String("baseline_pool", p.baseline))
	}

	maxRatios, err := perNodeRatios(len(nodes), p.maxRatios)
	if err != nil {
		return nil, err
	}

	minRatios, err := perNodeRatios(len(nodes), p.minRatios)
	if err != nil {
		return nil, err
	}

	nodeBlocks, err := perNodeBlocks(len(nodes), p.nodeBlocks, p.blocksPerNode)
	if err != nil {
		return nil, err
	}

	byNode := make(map[int][]PoolLayout, len(nodes))

	for i, node := range nodes {
		bpn := nodeBlocks[i]
		if bpn < 1 || g.queue.Cores%bpn != 0 {
			return nil, ErrConstraint.With(
				slog.Int("node_cores", g.queue.Cores),
				slog.Int("blocks_per_node", bpn),
			)
		}

		blockSize := g.queue.Cores / bpn

		var layouts []PoolLayout

		for _, alloc := range blockAllocations(node*bpn, pools, p.minBlocks) {
			if !ratioOK(alloc, p.baseline, maxRatios[i], minRatios[i], p.eps) {
				continue
			}

			tasks := make(map[string]int, len(pools))
			ncpus := 0

			for _, pool := range pools {
				tasks[pool] = alloc[pool] * blockSize
				ncpus += tasks[pool]
			}

			layouts = append(layouts, PoolLayout{
				Ncpus:  ncpus,
				Tasks:  tasks,
				RootPE: rootPEs(pools, tasks),
			})
		}

		byNode[node] = layouts
	}

	return byNode, nil
}

// poolsInUse returns the distinct pools of the map in range assignment
// order. An explicit order must cover every pool in use and is applied
// verbatim; otherwise the preferred order applies, with pools it does
// not name appended in lexical order.
func poolsInUse(poolMap map[string]string, order []string) ([]string, error) {
	set := make(map[string]bool, len(poolMap))
	for _, pool := range poolMap {
		set[pool] = true
	}

	if len(order) > 0 {
		named := make(map[string]bool, len(order))
		for _, pool := range order {
			named[pool] = true
		}

		var missing []string

		for pool := range set {
			if !named[pool] {
				missing = append(missing, pool)
			}
		}

		if len(missing) > 0 {
			slices.Sort(missing)

			return nil, ErrConstraint.With(slog.String("missing_pools", strings.Join(missing, " ")))
		}

		pools := make([]string, 0, len(set))

		for _, pool := range order {
			if set[pool] {
				pools = append(pools, pool)
			}
		}

		return pools, nil
	}

	pools := make([]string, 0, len(set))

	for _, pool := range preferredPools {
		if set[pool] {
			pools = append(pools, pool)
			delete(set, pool)
		}
	}

	return append(pools, slices.Sorted(maps.Keys(set))...), nil
}

func perNodeRatios(n int, ratios []map[string]float64) ([]map[string]float64, error) {
	switch len(ratios) {
	case 0:
		return make([]map[string]float64, n), nil
	case 1:
		out := make([]map[string]float64, n)
		for i := range out {
			out[i] = ratios[0]
		}

		return out, nil
	case n:
		return ratios, nil
	}

	return nil, ErrConstraint.With(
		slog.Int("ratios", len(ratios)),
		slog.Int("nodes", n),
	)
}

func perNodeBlocks(n int, blocks []int, fallback int) ([]int, error) {
	grow := func(b int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = b
		}

		return out
	}

	switch len(blocks) {
	case 0:
		return grow(fallback), nil
	case 1:
		return grow(blocks[0]), nil
	case n:
		return blocks, nil
	}

	return nil, ErrConstraint.With(
		slog.Int("blocks", len(blocks)),
		slog.Int("nodes", n),
	)
}

// blockAllocations enumerates every split of totalBlocks across the
// pools in order, honoring each pool's minimum. Pools absent from mins
// require one block; an explicit zero is allowed.
func blockAllocations(totalBlocks int, pools []string, mins map[string]int) []map[string]int {
	if len(pools) == 0 {
		return nil
	}

	need := make(map[string]int, len(pools))

	for _, pool := range pools {
		n, ok := mins[pool]
		if !ok {
			n = 1
		}

		need[pool] = n
	}

	var out []map[string]int

	acc := make(map[string]int, len(pools))

	var allocate func(i, remaining int)
	allocate = func(i, remaining int) {
		pool := pools[i]

		if i == len(pools)-1 {
			if remaining >= need[pool] {
				alloc := maps.Clone(acc)
				alloc[pool] = remaining
				out = append(out, alloc)
			}

			return
		}

		restMin := 0
		for _, p := range pools[i+1:] {
			restMin += need[p]
		}

		for blocks := need[pool]; blocks <= remaining-restMin; blocks++ {
			acc[pool] = blocks
			allocate(i+1, remaining-blocks)
		}

		delete(acc, pool)
	}

	allocate(0, totalBlocks)

	return out
}

func ratioOK(alloc map[string]int, baseline string, maxRatio, minRatio map[string]float64, eps float64) bool {
	base := float64(alloc[baseline])

	for pool, ratio := range maxRatio {
		if pool == baseline {
			continue
		}

		blocks, ok := alloc[pool]
		if !ok {
			continue
		}

		if float64(blocks)/base > ratio+eps {
			return false
		}
	}

	for pool, ratio := range minRatio {
		if pool == baseline {
			continue
		}

		blocks, ok := alloc[pool]
		if !ok {
			continue
		}

		if float64(blocks)/base < ratio-eps {
			return false
		}
	}

	return true
}

func rootPEs(pools []string, tasks map[string]int) map[string]int {
	roots := make(map[string]int, len(pools))

	pe := 0
	for _, pool := range pools {
		roots[pool] = pe
		pe += tasks[pool]
	}

	return roots
}

// Inline yaml sequence fragments. The experiment-generator input keeps
// per-layout columns on one line so branches stay readable next to
// their core counts.
type (
	flowInts   []int
	flowStrs   []string
	flowQuoted []string
)

func (f flowInts) MarshalYAML() ([]byte, error) {
	parts := make([]string, len(f))
	for i, n := range f {
		parts[i] = strconv.Itoa(n)
	}

	return []byte("[" + strings.Join(parts, ", ") + "]"), nil
}

func (f flowStrs) MarshalYAML() ([]byte, error) {
	return []byte("[" + strings.Join(f, ", ") + "]"), nil
}

func (f flowQuoted) MarshalYAML() ([]byte, error) {
	parts := make([]string, len(f))
	for i, s := range f {
		parts[i] = strconv.Quote(s)
	}

	return []byte("[" + strings.Join(parts, ", ") + "]"), nil
}

// OM3Experiment describes the experiment-generator input rendered by
// [OM3Generator.ExperimentYAML]. BranchPrefix and BlockName are
// required; zero fields fall back to the values the scaling workflow
// ships with.
type OM3Experiment struct {
	BranchPrefix string
	BlockName    string

	// PoolOrder fixes the pool segments of branch names. Without it
	// pools appear in lexical order.
	PoolOrder []string

	// Submodels lists the components given PELAYOUT attributes, in
	// output order. Defaults to ocn, atm, cpl, ice and rof.
	Submodels []string

	// PetlistSubmodel selects the component whose root processor
	// bounds the ESMF trace petlist. Defaults to ocn when present.
	PetlistSubmodel string

	// SkipRootPE omits the per-submodel rootpe attributes.
	SkipRootPE bool

	// Mem overrides the derived per-layout memory requests.
	Mem []string

	// Walltime defaults to a single five hour request.
	Walltime []string

	RestartN      int
	RestartOption string
	StopN         int
	StopOption    string

	ModelType           string
	RepositoryURL       string
	StartPoint          string
	TestPath            string
	RepositoryDirectory string
	ControlBranch       string
}

// ExperimentYAML renders the layouts as an experiment-generator input
// document. Layouts flatten across node counts in ascending node
// order, one perturbation branch per layout, with per-layout values
// aligned column-wise as inline sequences.
func (g *OM3Generator) ExperimentYAML(byNode map[int][]PoolLayout, poolMap map[string]string, exp OM3Experiment) (string, error) {
	if exp.BlockName == "" {
		return "", ErrConstraint.With(slog.String("block_name", exp.BlockName))
	}

	if exp.BranchPrefix == "" {
		return "", ErrConstraint.With(slog.String("branch_prefix", exp.BranchPrefix))
	}

	var all []PoolLayout
	for _, node := range slices.Sorted(maps.Keys(byNode)) {
		all = append(all, byNode[node]...)
	}

	if len(all) == 0 {
		return "", ErrNoLayouts
	}

	ncpus := make(flowInts, len(all))
	for i, l := range all {
		ncpus[i] = l.Ncpus
	}

	var mem any
	if exp.Mem != nil {
		mem = exp.Mem
	} else {
		derived := make(flowStrs, len(all))
		for i, l := range all {
			nodes := (l.Ncpus + g.queue.Cores - 1) / g.queue.Cores
			derived[i] = fmt.Sprintf("%dGB", nodes*g.queue.MemGB)
		}

		mem = derived
	}

	walltime := exp.Walltime
	if walltime == nil {
		walltime = []string{"05:00:00"}
	}

	submodels := exp.Submodels
	if submodels == nil {
		submodels = []string{"ocn", "atm", "cpl", "ice", "rof"}
	}

	pelayout := make(yaml.MapSlice, 0, 2*len(submodels))

	for _, sub := range submodels {
		pool, ok := poolMap[sub]
		if !ok {
			return "", ErrConstraint.With(slog.String("submodel", sub))
		}

		tasks := make(flowInts, len(all))
		roots := make(flowInts, len(all))

		for i, l := range all {
			n, ok := l.Tasks[pool]
			if !ok {
				return "", ErrConstraint.With(
					slog.String("submodel", sub),
					slog.String("pool", pool),
				)
			}

			tasks[i] = n
			roots[i] = l.RootPE[pool]
		}

		pelayout = append(pelayout, yaml.MapItem{Key: sub + "_ntasks", Value: tasks})

		if !exp.SkipRootPE {
			pelayout = append(pelayout, yaml.MapItem{Key: sub + "_rootpe", Value: roots})
		}
	}

	petSub := exp.PetlistSubmodel
	if petSub == "" {
		petSub = submodels[0]
		if slices.Contains(submodels, "ocn") {
			petSub = "ocn"
		}
	}

	petPool, ok := poolMap[petSub]
	if !ok {
		return "", ErrConstraint.With(slog.String("submodel", petSub))
	}

	petlist := make(flowQuoted, len(all))
	for i, l := range all {
		petlist[i] = fmt.Sprintf("0 %d", l.RootPE[petPool])
	}

	masktable := make(flowStrs, len(all))
	masktable[0] = "REMOVE"
	for i := 1; i < len(all); i++ {
		masktable[i] = "PRESERVE"
	}

	restartN, stopN := exp.RestartN, exp.StopN
	if restartN == 0 {
		restartN = 10
	}
	if stopN == 0 {
		stopN = 10
	}

	restartOption, stopOption := exp.RestartOption, exp.StopOption
	if restartOption == "" {
		restartOption = "days"
	}
	if stopOption == "" {
		stopOption = "days"
	}

	modelType := exp.ModelType
	if modelType == "" {
		modelType = "access-om3"
	}

	controlBranch := exp.ControlBranch
	if controlBranch == "" {
		controlBranch = "ctrl"
	}

	block := yaml.MapSlice{
		{Key: "branches", Value: branchNames(byNode, poolMap, exp.BranchPrefix, g.queue.Name, exp.PoolOrder)},
		{Key: "MOM_input", Value: yaml.MapSlice{
			{Key: "AUTO_MASKTABLE", Value: masktable},
		}},
		{Key: "ice_in", Value: yaml.MapSlice{
			{Key: "domain_nml", Value: yaml.MapSlice{
				{Key: "max_blocks", Value: -1},
			}},
		}},
		{Key: "config.yaml", Value: yaml.MapSlice{
			{Key: "env", Value: yaml.MapSlice{
				{Key: "ESMF_RUNTIME_PROFILE", Value: "on"},
				{Key: "ESMF_RUNTIME_TRACE", Value: "on"},
				{Key: "ESMF_RUNTIME_TRACE_PETLIST", Value: petlist},
				{Key: "ESMF_RUNTIME_PROFILE_OUTPUT", Value: "SUMMARY"},
			}},
			{Key: "ncpus", Value: ncpus},
			{Key: "mem", Value: mem},
			{Key: "walltime", Value: walltime},
			{Key: "metadata", Value: yaml.MapSlice{
				{Key: "enable", Value: true},
			}},
			{Key: "queue", Value: g.queue.Name},
			{Key: "platform", Value: yaml.MapSlice{
				{Key: "nodesize", Value: g.queue.Cores},
				{Key: "nodemem", Value: g.queue.MemGB},
			}},
		}},
		{Key: "nuopc.runconfig", Value: yaml.MapSlice{
			{Key: "PELAYOUT_attributes", Value: pelayout},
			{Key: "CLOCK_attributes", Value: yaml.MapSlice{
				{Key: "restart_n", Value: restartN},
				{Key: "restart_option", Value: restartOption},
				{Key: "stop_n", Value: stopN},
				{Key: "stop_option", Value: stopOption},
			}},
		}},
	}

	doc := yaml.MapSlice{
		{Key: "model_type", Value: modelType},
		{Key: "repository_url", Value: nullable(exp.RepositoryURL)},
		{Key: "start_point", Value: nullable(exp.StartPoint)},
		{Key: "test_path", Value: nullable(exp.TestPath)},
		{Key: "repository_directory", Value: nullable(exp.RepositoryDirectory)},
		{Key: "control_branch_name", Value: controlBranch},
		{Key: "Control_Experiment", Value: yaml.MapSlice{
			{Key: "config.yaml", Value: yaml.MapSlice{
				{Key: "metadata", Value: yaml.MapSlice{
					{Key: "enable", Value: true},
				}},
			}},
		}},
		{Key: "Perturbation_Experiment", Value: yaml.MapSlice{
			{Key: exp.BlockName, Value: block},
		}},
	}

	out, err := yaml.MarshalWithOptions(doc, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return "", err
	}

	return string(out), nil
}

// branchNames renders one branch name per layout, across node counts
// in ascending order. Pool segments follow the explicit order when
// given and lexical order otherwise.
func branchNames(byNode map[int][]PoolLayout, poolMap map[string]string, prefix, queue string, order []string) []string {
	set := make(map[string]bool, len(poolMap))
	for _, pool := range poolMap {
		set[pool] = true
	}

	pools := slices.Sorted(maps.Keys(set))

	if len(order) > 0 {
		pools = pools[:0]
		for _, pool := range order {
			if set[pool] {
				pools = append(pools, pool)
			}
		}
	}

	var branches []string

	for _, node := range slices.Sorted(maps.Keys(byNode)) {
		for _, layout := range byNode[node] {
			parts := []string{prefix, fmt.Sprintf("node_%d", node), "queue_" + queue}
			for _, pool := range pools {
				parts = append(parts, fmt.Sprintf("%s_%d", pool, layout.Tasks[pool]))
			}

			branches = append(branches, strings.Join(parts, "_"))
		}
	}

	return branches
}

func nullable(s string) any {
	if s == "" {
		return nil
	}

	return s
}
