// Package components wraps the definitions in web/components/todo.html.
package components

import (
	"fmt"

	"github.com/pthm/inflate"
	"golang.org/x/net/html"
)

// Todo is a single todo entry.
type Todo struct {
	ID    string
	Title string
	Done  bool
}

// TodoItem is an inflated TodoItem definition bound to a Todo.
type TodoItem struct {
	*inflate.Element
	title *html.Node
}

// NewTodoItem inflates a TodoItem and fills it from todo.
func NewTodoItem(inf *inflate.Inflater, todo Todo) (*TodoItem, error) {
	el, err := inf.NewElement("TodoItem")
	if err != nil {
		return nil, err
	}

	item := &TodoItem{Element: el}
	err = inflate.Construct(el, nil, func(el *inflate.Element) error {
		item.title = el.ElementByID("title")
		if item.title == nil {
			return fmt.Errorf("TodoItem has no title element")
		}
		inflate.RemoveAttr(item.title, "id")
		item.title.AppendChild(&html.Node{Type: html.TextNode, Data: todo.Title})
		inflate.SetAttr(el.Node, "data-id", todo.ID)
		item.SetDone(todo.Done)
		return nil
	})
	return item, err
}

// SetDone marks the item done or pending.
func (t *TodoItem) SetDone(done bool) {
	inflate.ChangeClass(t.Node, "done", done)
}
