package dom

import "golang.org/x/net/html"

type dialogState struct {
	modal       bool
	returnValue string
}

func (n *Node) dialogState() *dialogState {
	if n.dialog == nil {
		n.dialog = &dialogState{}
	}
	return n.dialog
}

// DialogOpen reports whether the dialog has the open attribute.
func (n *Node) DialogOpen() bool {
	return n.HasAttribute("open")
}

// SetDialogOpen reflects the open attribute. It neither fires events nor
// changes the return value.
func (n *Node) SetDialogOpen(open bool) {
	n.ToggleAttribute("open", open)
}

// IsModal reports whether the dialog was opened with ShowModal and has not
// been closed since.
func (n *Node) IsModal() bool {
	return n.dialog != nil && n.dialog.modal
}

// ReturnValue returns the dialog's return value.
func (n *Node) ReturnValue() string {
	return n.dialogState().returnValue
}

// SetReturnValue sets the dialog's return value.
func (n *Node) SetReturnValue(v string) {
	n.dialogState().returnValue = v
}

// Show opens the dialog non-modally. It is a no-op when the dialog is
// already open non-modally.
func (n *Node) Show() error {
	if n.DialogOpen() {
		if n.IsModal() && n.doc.profile.Quirks.DialogShowThrowsWhenModal {
			return ErrInvalidState("The dialog is already open as a modal dialog, and therefore cannot be opened as a non-modal dialog.")
		}
		return nil
	}
	_ = n.SetAttribute("open", "")
	return nil
}

// ShowModal opens the dialog modally. It is a no-op when the dialog is
// already modal and fails when it is open non-modally or disconnected.
func (n *Node) ShowModal() error {
	if n.DialogOpen() {
		if n.IsModal() {
			return nil
		}
		return ErrInvalidState("The dialog is already open as a non-modal dialog, and therefore cannot be opened as a modal dialog.")
	}
	if !n.IsConnected() {
		return ErrInvalidState("The dialog is not connected.")
	}
	_ = n.SetAttribute("open", "")
	n.dialogState().modal = true
	return nil
}

// CloseDialog closes an open dialog, stores returnValue when non-nil and
// queues the close event. Closed dialogs are left untouched.
func (n *Node) CloseDialog(returnValue *string) {
	if !n.DialogOpen() {
		return
	}
	n.RemoveAttribute("open")
	st := n.dialogState()
	st.modal = false
	if returnValue != nil {
		st.returnValue = *returnValue
	}
	if d := n.doc.dispatcher; d != nil {
		d.QueueEvent(n, "close", EventInit{})
	}
}

// RequestClose fires a cancelable cancel event at an open dialog and closes
// it unless the event was canceled.
func (n *Node) RequestClose(returnValue *string) {
	if !n.DialogOpen() {
		return
	}
	if d := n.doc.dispatcher; d != nil {
		if !d.DispatchEvent(n, "cancel", EventInit{Cancelable: true}) {
			return
		}
	}
	n.CloseDialog(returnValue)
}

// clearModalFlags runs the dialog removing steps for a removed subtree.
func clearModalFlags(root *Node) {
	unset := func(n *Node) {
		if n.dialog != nil {
			n.dialog.modal = false
		}
	}
	if root.Is("dialog") {
		unset(root)
	}
	if root.raw.FirstChild == nil {
		return
	}
	descendants(root.raw, func(r *html.Node) bool {
		if r.Namespace == "" && r.Data == "dialog" {
			unset(root.doc.wrap(r))
		}
		return true
	})
}
