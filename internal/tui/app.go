// Package tui renders the city map, budget and plan views on top of
// the scene bookkeeping layer. All pointer and key handling lives
// here; the scene package only sees world-space events.
package tui

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/civiscope/civiscope/internal/config"
	"github.com/civiscope/civiscope/internal/database/repository"
	"github.com/civiscope/civiscope/internal/model"
	"github.com/civiscope/civiscope/internal/scene"
	"github.com/civiscope/civiscope/internal/search"
	"github.com/civiscope/civiscope/internal/service"
	"github.com/civiscope/civiscope/internal/sim"
	"github.com/civiscope/civiscope/internal/store"
	"github.com/civiscope/civiscope/internal/watch"
)

const (
	panStep      = 2
	searchLimit  = 8
	historyLimit = 15
)

// Stores groups the in-memory datasets.
type Stores struct {
	Zones  *store.ZoneStore
	Budget *store.BudgetStore
}

// App is the bubbletea model for the whole program.
type App struct {
	ctx     context.Context
	cfg     config.Config
	logger  *zap.Logger
	stores  Stores
	plans   *service.PlanService
	watcher *watch.Watcher

	pool    *scene.Pool
	tracker *scene.Tracker
	rec     *scene.Reconciler
	sel     *scene.Selection

	state appState
	modal modalState

	cam           model.Point
	width, height int
	mapW, mapH    int

	status   string
	statusIs statusKind

	// impact modal
	impactZone   string
	impactNames  []string
	impactCursor int
	impactField  int
	amountInput  textinput.Model
	yearsInput   textinput.Model
	impactErr    string
	preview      *sim.Projection

	// search modal
	searchInput  textinput.Model
	searchCursor int
	matches      []search.Match

	// plans view
	planList      []repository.Plan
	planCursor    int
	planNameInput textinput.Model
	history       []repository.Adjustment

	// budget view
	budgetCursor int
}

type appState string

const (
	viewMap    appState = "map"
	viewBudget appState = "budget"
	viewPlans  appState = "plans"
)

type modalState string

const (
	modalNone          modalState = ""
	modalImpact        modalState = "impact"
	modalSearch        modalState = "search"
	modalSavePlan      modalState = "savePlan"
	modalConfirmDelete modalState = "confirmDelete"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusError
)

// New builds the app model. The stores must already be loaded; the
// watcher may be nil when live reload is disabled.
func New(ctx context.Context, cfg config.Config, stores Stores, plans *service.PlanService, watcher *watch.Watcher, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool := scene.NewPool(cfg.Scene.PoolCapacity, logger)
	tracker := scene.NewTracker(cfg.Scene.Margin, cfg.Scene.ScrollThreshold,
		time.Duration(cfg.Scene.MinIntervalMS)*time.Millisecond)

	amount := textinput.New()
	amount.Prompt = "$ "
	amount.Placeholder = "amount"
	amount.CharLimit = 12
	years := textinput.New()
	years.Prompt = "years "
	years.Placeholder = strconv.Itoa(cfg.Sim.DefaultYears)
	years.CharLimit = 3
	searchIn := textinput.New()
	searchIn.Prompt = "/ "
	searchIn.Placeholder = "zone name"
	planName := textinput.New()
	planName.Prompt = "name "
	planName.Placeholder = "plan name"

	return &App{
		ctx:           ctx,
		cfg:           cfg,
		logger:        logger,
		stores:        stores,
		plans:         plans,
		watcher:       watcher,
		pool:          pool,
		tracker:       tracker,
		rec:           scene.NewReconciler(pool, tracker, logger),
		sel:           scene.NewSelection(time.Duration(cfg.UI.DoubleClickMS) * time.Millisecond),
		state:         viewMap,
		amountInput:   amount,
		yearsInput:    years,
		searchInput:   searchIn,
		planNameInput: planName,
	}
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.loadPlans(), a.loadHistory()}
	if a.watcher != nil {
		cmds = append(cmds, a.waitForChange())
	}
	return tea.Batch(cmds...)
}

// viewport returns the world window the map pane currently shows.
func (a *App) viewport() scene.Viewport {
	return scene.Viewport{
		Min: a.cam,
		Max: a.cam.Add(model.Point{X: float64(a.mapW - 1), Y: float64(a.mapH - 1)}),
	}
}

// reconcile re-runs the active-set diff against the last visible rect.
func (a *App) reconcile() {
	a.rec.Reconcile(a.stores.Zones.Zones(), a.sel.Selected())
}

// evaluateAndReconcile recomputes the visible rect first, bypassing the
// scroll debounce. Used on resize, jumps and dataset swaps.
func (a *App) evaluateAndReconcile() {
	a.tracker.SetViewport(a.viewport())
	a.tracker.Evaluate(time.Now())
	a.reconcile()
}

// pan moves the camera and lets the tracker decide whether the
// visibility rect is due for recomputation.
func (a *App) pan(dx, dy float64) {
	a.cam = a.cam.Add(model.Point{X: dx, Y: dy})
	a.tracker.SetViewport(a.viewport())
	a.tracker.AddScroll(model.Point{X: dx, Y: dy})
	now := time.Now()
	if a.tracker.ShouldEvaluate(now) {
		a.tracker.Evaluate(now)
		a.reconcile()
	}
}

func (a *App) centerOn(z *model.Zone) {
	a.cam = model.Point{
		X: z.Pos.X - float64(a.mapW)/2,
		Y: z.Pos.Y - float64(a.mapH)/2,
	}
	a.evaluateAndReconcile()
}

// screenToWorld converts a terminal cell to world coordinates. The map
// pane starts below the one-line header.
func (a *App) screenToWorld(x, y int) (model.Point, bool) {
	my := y - mapTop
	if my < 0 || my >= a.mapH || x < 0 || x >= a.mapW {
		return model.Point{}, false
	}
	return a.cam.Add(model.Point{X: float64(x), Y: float64(my)}), true
}

// zoneAt hit-tests the zones against a world point, nearest first
// within half a cell. The selected zone wins ties so a drag never
// grabs the marker under it.
func (a *App) zoneAt(p model.Point) *model.Zone {
	selected := a.sel.Selected()
	var hit *model.Zone
	best := math.MaxFloat64
	for _, z := range a.stores.Zones.Zones() {
		dx, dy := math.Abs(z.Pos.X-p.X), math.Abs(z.Pos.Y-p.Y)
		if dx > 0.5 || dy > 0.5 {
			continue
		}
		d := dx + dy
		if z.Name == selected {
			d -= 1 // tie-break toward the selection
		}
		if d < best {
			best = d
			hit = z
		}
	}
	return hit
}

func (a *App) setStatus(kind statusKind, format string, args ...any) {
	a.status = fmt.Sprintf(format, args...)
	a.statusIs = kind
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.mapW = m.Width
		a.mapH = m.Height - mapTop - 2 // status + help lines
		if a.mapH < 1 {
			a.mapH = 1
		}
		a.evaluateAndReconcile()
		return a, nil

	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		return a.handleKey(m)

	case tea.MouseMsg:
		if a.modal == modalNone && a.state == viewMap {
			return a.handleMouse(m)
		}
		// keep the press state machine consistent while a modal is up
		if m.Action == tea.MouseActionRelease {
			a.sel.PointerUp()
		}
		return a, nil

	case plansMsg:
		a.planList = m
		if a.planCursor >= len(a.planList) {
			a.planCursor = 0
		}
	case historyMsg:
		a.history = m
	case planSavedMsg:
		a.setStatus(statusInfo, "saved plan %q (%d zones, %d items)", m.Name, m.Zones, m.Items)
		return a, a.loadPlans()
	case planRestoredMsg:
		a.setStatus(statusInfo, "restored plan")
		a.sel.Clear()
		a.evaluateAndReconcile()
	case planDeletedMsg:
		a.setStatus(statusInfo, "plan deleted")
		return a, a.loadPlans()
	case adjustmentMsg:
		p := sim.Projection(m)
		a.setStatus(statusInfo, "%s/%s: %+.2f per year, %+.2f over %d years",
			p.Zone, p.Impact, p.Yearly, p.Total, p.Years)
		return a, a.loadHistory()
	case datasetSavedMsg:
		a.setStatus(statusInfo, "zones written to %s", a.cfg.ZonesPath())
	case datasetChangedMsg:
		cmd := a.reloadDataset(string(m))
		return a, cmd
	case statusMsg:
		a.setStatus(statusInfo, "%s", string(m))
	case errMsg:
		a.setStatus(statusError, "error: %v", m.error)
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		a.rec.Teardown()
		return a, tea.Quit
	case "m", "esc":
		a.state = viewMap
		return a, nil
	case "b":
		a.state = viewBudget
		return a, nil
	case "p":
		a.state = viewPlans
		return a, a.loadPlans()
	case "tab":
		switch a.state {
		case viewMap:
			a.state = viewBudget
		case viewBudget:
			a.state = viewPlans
			return a, a.loadPlans()
		default:
			a.state = viewMap
		}
		return a, nil
	}

	switch a.state {
	case viewMap:
		return a.handleMapKey(m)
	case viewBudget:
		return a.handleBudgetKey(m)
	case viewPlans:
		return a.handlePlansKey(m)
	}
	return a, nil
}

func (a *App) handleMapKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "left", "h":
		a.pan(-panStep, 0)
	case "right", "l":
		a.pan(panStep, 0)
	case "up", "k":
		a.pan(0, -panStep)
	case "down", "j":
		a.pan(0, panStep)
	case "/":
		a.openSearch()
	case "enter", "i":
		if a.sel.Selected() != "" {
			a.openImpactModal(a.sel.Selected())
		}
	case "c":
		a.sel.Clear()
		a.reconcile()
	case "g":
		if z, ok := a.stores.Zones.Get(a.sel.Selected()); ok {
			a.centerOn(z)
		}
	case "s", "w":
		return a, a.saveZonesCmd()
	}
	return a, nil
}

func (a *App) handleBudgetKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "up", "k":
		if a.budgetCursor > 0 {
			a.budgetCursor--
		}
	case "down", "j":
		if a.budgetCursor < a.stores.Budget.Len()-1 {
			a.budgetCursor++
		}
	}
	return a, nil
}

func (a *App) handlePlansKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "up", "k":
		if a.planCursor > 0 {
			a.planCursor--
		}
	case "down", "j":
		if a.planCursor < len(a.planList)-1 {
			a.planCursor++
		}
	case "s":
		a.modal = modalSavePlan
		a.planNameInput.SetValue("")
		a.planNameInput.Focus()
	case "enter":
		if len(a.planList) > 0 {
			return a, a.restorePlanCmd(a.planList[a.planCursor].ID)
		}
	case "x":
		if len(a.planList) > 0 {
			a.modal = modalConfirmDelete
		}
	case "r":
		return a, tea.Batch(a.loadPlans(), a.loadHistory())
	}
	return a, nil
}

func (a *App) handleMouse(m tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.Button == tea.MouseButtonWheelUp && m.Action == tea.MouseActionPress:
		a.pan(0, -1)
	case m.Button == tea.MouseButtonWheelDown && m.Action == tea.MouseActionPress:
		a.pan(0, 1)

	case m.Button == tea.MouseButtonLeft && m.Action == tea.MouseActionPress:
		world, ok := a.screenToWorld(m.X, m.Y)
		if !ok {
			return a, nil
		}
		click := a.sel.PointerDown(a.zoneAt(world), world, time.Now())
		a.reconcile()
		if click.DoubleClick {
			a.openImpactModal(click.Zone)
		} else if click.Zone != "" {
			a.setStatus(statusInfo, "selected %s", click.Zone)
		} else {
			a.status = ""
		}

	case m.Action == tea.MouseActionMotion:
		world, ok := a.screenToWorld(m.X, m.Y)
		if !ok {
			return a, nil
		}
		if pos, dragging := a.sel.Drag(world); dragging {
			a.stores.Zones.Move(a.sel.Selected(), pos)
			a.reconcile()
		}

	case m.Button == tea.MouseButtonLeft && m.Action == tea.MouseActionRelease:
		if a.sel.PointerUp() {
			if z, ok := a.stores.Zones.Get(a.sel.Selected()); ok {
				a.setStatus(statusInfo, "moved %s to (%.0f, %.0f)", z.Name, z.Pos.X, z.Pos.Y)
			}
		}
	}
	return a, nil
}

// --- impact modal ---

func (a *App) openImpactModal(zoneName string) {
	z, ok := a.stores.Zones.Get(zoneName)
	if !ok {
		return
	}
	names := sortedImpactNames(z)
	if len(names) == 0 {
		a.setStatus(statusError, "%s has no impact scores", zoneName)
		return
	}
	a.modal = modalImpact
	a.impactZone = zoneName
	a.impactNames = names
	a.impactCursor = 0
	a.impactField = 0
	a.impactErr = ""
	a.preview = nil
	a.amountInput.SetValue(strconv.FormatFloat(z.Cost, 'g', -1, 64))
	a.yearsInput.SetValue(strconv.Itoa(a.cfg.Sim.DefaultYears))
	a.amountInput.Focus()
	a.yearsInput.Blur()
	a.refreshPreview()
}

// refreshPreview recomputes the projection from the modal inputs,
// surfacing parse and domain errors inline instead of closing the
// modal.
func (a *App) refreshPreview() {
	a.preview = nil
	a.impactErr = ""

	z, ok := a.stores.Zones.Get(a.impactZone)
	if !ok {
		a.impactErr = "zone no longer exists"
		return
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(a.amountInput.Value()), 64)
	if err != nil {
		a.impactErr = "amount must be a number"
		return
	}
	years, err := strconv.Atoi(strings.TrimSpace(a.yearsInput.Value()))
	if err != nil {
		a.impactErr = "years must be a whole number"
		return
	}
	p, err := sim.Project(z, a.impactNames[a.impactCursor], amount, years)
	if err != nil {
		a.impactErr = err.Error()
		return
	}
	a.preview = &p
}

func (a *App) closeModal() {
	a.modal = modalNone
	a.amountInput.Blur()
	a.yearsInput.Blur()
	a.searchInput.Blur()
	a.planNameInput.Blur()
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalImpact:
		return a.handleImpactKey(m)
	case modalSearch:
		return a.handleSearchKey(m)
	case modalSavePlan:
		return a.handleSavePlanKey(m)
	case modalConfirmDelete:
		switch m.String() {
		case "y", "Y":
			a.closeModal()
			if len(a.planList) > 0 {
				return a, a.deletePlanCmd(a.planList[a.planCursor].ID)
			}
		case "n", "N", "esc":
			a.closeModal()
		}
	}
	return a, nil
}

func (a *App) handleImpactKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.closeModal()
		return a, nil
	case "tab", "shift+tab":
		a.impactField = (a.impactField + 1) % 2
		if a.impactField == 0 {
			a.amountInput.Focus()
			a.yearsInput.Blur()
		} else {
			a.amountInput.Blur()
			a.yearsInput.Focus()
		}
		return a, nil
	case "left":
		if a.impactCursor > 0 {
			a.impactCursor--
			a.refreshPreview()
		}
		return a, nil
	case "right":
		if a.impactCursor < len(a.impactNames)-1 {
			a.impactCursor++
			a.refreshPreview()
		}
		return a, nil
	case "enter":
		if a.preview == nil {
			return a, nil
		}
		p := *a.preview
		a.closeModal()
		return a, a.applyCmd(p)
	}

	var cmd tea.Cmd
	if a.impactField == 0 {
		a.amountInput, cmd = a.amountInput.Update(m)
	} else {
		a.yearsInput, cmd = a.yearsInput.Update(m)
	}
	a.refreshPreview()
	return a, cmd
}

// --- search modal ---

func (a *App) openSearch() {
	a.modal = modalSearch
	a.searchInput.SetValue("")
	a.searchInput.Focus()
	a.searchCursor = 0
	a.matches = search.Zones(a.stores.Zones.Zones(), "", searchLimit)
}

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.closeModal()
		return a, nil
	case "up":
		if a.searchCursor > 0 {
			a.searchCursor--
		}
		return a, nil
	case "down":
		if a.searchCursor < len(a.matches)-1 {
			a.searchCursor++
		}
		return a, nil
	case "enter":
		if a.searchCursor < len(a.matches) {
			z := a.matches[a.searchCursor].Zone
			a.sel.Clear()
			a.sel.PointerDown(z, z.Pos, time.Now())
			a.sel.PointerUp()
			a.centerOn(z)
			a.setStatus(statusInfo, "selected %s", z.Name)
		}
		a.closeModal()
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(m)
	a.matches = search.Zones(a.stores.Zones.Zones(), a.searchInput.Value(), searchLimit)
	if a.searchCursor >= len(a.matches) {
		a.searchCursor = 0
	}
	return a, cmd
}

func (a *App) handleSavePlanKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.closeModal()
		return a, nil
	case "enter":
		name := strings.TrimSpace(a.planNameInput.Value())
		if name == "" {
			a.setStatus(statusError, "enter a plan name")
			return a, nil
		}
		a.closeModal()
		return a, a.savePlanCmd(name)
	}
	var cmd tea.Cmd
	a.planNameInput, cmd = a.planNameInput.Update(m)
	return a, cmd
}

// --- dataset reload ---

// reloadDataset re-reads whichever CSV changed on disk and re-arms the
// watcher. Row errors are summarized in the status line.
func (a *App) reloadDataset(path string) tea.Cmd {
	var res store.LoadResult
	var err error
	var what string
	switch path {
	case a.cfg.ZonesPath():
		what = "zones"
		res, err = a.stores.Zones.LoadFile(path)
	case a.cfg.BudgetPath():
		what = "budget"
		res, err = a.stores.Budget.LoadFile(path)
	default:
		return a.waitForChange()
	}
	if err != nil {
		a.setStatus(statusError, "reload %s: %v", what, err)
	} else if len(res.RowErrors) > 0 {
		a.setStatus(statusError, "reloaded %s: %d rows, %d skipped (first: %v)",
			what, res.Loaded, len(res.RowErrors), res.RowErrors[0])
	} else {
		a.setStatus(statusInfo, "reloaded %s: %d rows", what, res.Loaded)
	}
	if _, ok := a.stores.Zones.Get(a.sel.Selected()); !ok {
		a.sel.Clear()
	}
	a.evaluateAndReconcile()
	return a.waitForChange()
}

// --- commands ---

func (a *App) waitForChange() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-a.watcher.Events()
		if !ok {
			return nil
		}
		return datasetChangedMsg(ev.Path)
	}
}

func (a *App) loadPlans() tea.Cmd {
	return func() tea.Msg {
		list, err := a.plans.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return plansMsg(list)
	}
}

func (a *App) loadHistory() tea.Cmd {
	return func() tea.Msg {
		hist, err := a.plans.History(a.ctx, historyLimit)
		if err != nil {
			return errMsg{err}
		}
		return historyMsg(hist)
	}
}

func (a *App) savePlanCmd(name string) tea.Cmd {
	return func() tea.Msg {
		p, err := a.plans.Snapshot(a.ctx, name)
		if err != nil {
			return errMsg{err}
		}
		return planSavedMsg(p)
	}
}

func (a *App) restorePlanCmd(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.plans.Restore(a.ctx, id); err != nil {
			return errMsg{err}
		}
		return planRestoredMsg(id)
	}
}

func (a *App) deletePlanCmd(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.plans.Delete(a.ctx, id); err != nil {
			return errMsg{err}
		}
		return planDeletedMsg{}
	}
}

func (a *App) applyCmd(p sim.Projection) tea.Cmd {
	return func() tea.Msg {
		applied, err := a.plans.Apply(a.ctx, p.Zone, p.Impact, p.Proposed, p.Years)
		if err != nil {
			return errMsg{err}
		}
		return adjustmentMsg(applied)
	}
}

func (a *App) saveZonesCmd() tea.Cmd {
	return func() tea.Msg {
		if err := a.stores.Zones.SaveFile(a.cfg.ZonesPath()); err != nil {
			return errMsg{err}
		}
		return datasetSavedMsg{}
	}
}

// --- messages ---

type plansMsg []repository.Plan

type historyMsg []repository.Adjustment

type planSavedMsg repository.Plan

type planRestoredMsg string

type planDeletedMsg struct{}

type adjustmentMsg sim.Projection

type datasetChangedMsg string

type datasetSavedMsg struct{}

type statusMsg string

type errMsg struct{ error }
