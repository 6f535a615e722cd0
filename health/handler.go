package health

// Registration is a named Command in a CommandHandler.
type Registration struct {
	Name    string
	Command Command
}

// CommandHandler holds the named commands that make up one health view.
//
// It is not safe for concurrent mutation. Register commands at startup,
// before the handler is shared with request-serving goroutines.
type CommandHandler struct {
	commands map[string]Command
	order    []string // Maintains registration order
}

// NewCommandHandler creates an empty handler.
func NewCommandHandler() *CommandHandler {
	return &CommandHandler{
		commands: make(map[string]Command),
		order:    make([]string, 0),
	}
}

// Register adds command under serviceName. A later registration for the
// same name replaces the command and keeps its position.
func (h *CommandHandler) Register(serviceName string, command Command) {
	if _, exists := h.commands[serviceName]; !exists {
		h.order = append(h.order, serviceName)
	}
	h.commands[serviceName] = command
}

// Commands returns the registered commands in registration order.
// The returned slice is a copy.
func (h *CommandHandler) Commands() []Registration {
	regs := make([]Registration, len(h.order))
	for i, name := range h.order {
		regs[i] = Registration{Name: name, Command: h.commands[name]}
	}
	return regs
}

// Names returns the registered service names in registration order.
func (h *CommandHandler) Names() []string {
	names := make([]string, len(h.order))
	copy(names, h.order)
	return names
}

// Len returns the number of registered commands.
func (h *CommandHandler) Len() int {
	return len(h.order)
}
