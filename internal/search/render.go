package search

import "fmt"

// render dispatches on the state kind. Each variant's method touches only the
// counter, the results container and the load-more control.
func (c *Controller) render() error {
	if c.surface == nil {
		return nil
	}

	switch st := c.state.(type) {
	case IdleState:
		c.renderIdle()
	case LoadingState:
		c.renderLoading()
	case EmptyState:
		c.renderEmpty(st)
	case ResultsState:
		c.renderResults(st)
	case ErrorState:
		c.renderError(st)
	default:
		return fmt.Errorf("unhandled search state kind %v", c.state.Kind())
	}
	return nil
}

func (c *Controller) renderIdle() {
	c.surface.SetCounter("")
	c.surface.ClearResults()
	c.surface.SetLoadMore(false, "")
}

func (c *Controller) renderLoading() {
	c.surface.SetCounter("")
	c.surface.ShowSkeleton(SkeletonCount, c.cfg.ShowImages)
	c.surface.SetLoadMore(false, "")
}

func (c *Controller) renderEmpty(st EmptyState) {
	c.surface.SetCounter(FormatCounter(0, st.Query))
	c.surface.ShowEmpty(EmptyMessage)
	c.surface.SetLoadMore(false, "")
}

func (c *Controller) renderResults(st ResultsState) {
	c.surface.SetCounter(FormatCounter(st.Total, st.Query))

	items := make([]ResultSlots, len(st.Visible))
	for i, doc := range st.Visible {
		items[i] = FillSlots(doc, c.cfg.ShowImages)
	}
	c.surface.ShowResults(items)

	if remaining := st.Remaining(); remaining > 0 {
		c.surface.SetLoadMore(true, LoadMoreLabel(remaining, c.cfg.PageSize))
	} else {
		c.surface.SetLoadMore(false, "")
	}
}

func (c *Controller) renderError(st ErrorState) {
	c.surface.SetCounter("")
	c.surface.ShowError(st.Message)
	c.surface.SetLoadMore(false, "")
}
