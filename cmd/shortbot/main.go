package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/m4xw311/shortbot/agent"
	"github.com/m4xw311/shortbot/config"
	"github.com/m4xw311/shortbot/llm"
	"github.com/m4xw311/shortbot/session"
	"github.com/m4xw311/shortbot/tools"
)

func main() {
	modeFlag := flag.String("m", "", "Execution mode: 'auto' or 'prompt'")
	sessionFlag := flag.String("s", "", "Session name to create or use")
	toolsetFlag := flag.String("t", "", "Toolset to use (defaults to 'default')")
	resumeFlag := flag.String("r", "", "Resume a session by name")
	toolVerbosityFlag := flag.String("tool-verbosity", "", "Tool verbosity level: 'none', 'info', or 'all'")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %+v\n", err)
		os.Exit(1)
	}

	var sess *session.Session
	sessionName := *sessionFlag

	if *resumeFlag != "" {
		sessionName = *resumeFlag
		sess, err = session.Load("", sessionName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resuming session '%s': %+v\n", sessionName, err)
			os.Exit(1)
		}
		fmt.Printf("Resuming session: %s\n", sessionName)
		// Session settings apply unless overridden on the command line.
		if *modeFlag == "" && sess.Mode != "" {
			*modeFlag = sess.Mode
		}
		if *toolVerbosityFlag == "" && sess.Verbosity != "" {
			*toolVerbosityFlag = sess.Verbosity
		}
	} else {
		if sessionName == "" {
			sessionName = defaultSessionName()
		}
		sess, err = session.New("", sessionName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating session '%s': %+v\n", sessionName, err)
			os.Exit(1)
		}
		fmt.Printf("Starting new session: %s\n", sessionName)
	}

	if *modeFlag == "" {
		*modeFlag = "auto"
	}
	if *toolVerbosityFlag == "" {
		*toolVerbosityFlag = "none"
	}

	sess.Mode = *modeFlag
	sess.Verbosity = *toolVerbosityFlag
	if err := sess.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving session '%s': %+v\n", sessionName, err)
		os.Exit(1)
	}

	var opMode agent.Mode
	switch *modeFlag {
	case "auto":
		opMode = agent.ModeAuto
	case "prompt":
		opMode = agent.ModePrompt
	default:
		fmt.Fprintf(os.Stderr, "Invalid mode '%s'. Must be 'auto' or 'prompt'.\n", *modeFlag)
		os.Exit(1)
	}

	var verbosity agent.ToolVerbosity
	switch *toolVerbosityFlag {
	case "none":
		verbosity = agent.ToolVerbosityNone
	case "info":
		verbosity = agent.ToolVerbosityInfo
	case "all":
		verbosity = agent.ToolVerbosityAll
	default:
		fmt.Fprintf(os.Stderr, "Invalid tool verbosity '%s'. Must be 'none', 'info', or 'all'.\n", *toolVerbosityFlag)
		os.Exit(1)
	}

	def := agent.Shortener(cfg.Model)

	registry := tools.NewRegistry()
	defer registry.Close()
	for _, server := range cfg.MCPServers {
		if err := registry.AttachMCPServer(server.Name, server.Command, server.Args); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not attach MCP server '%s': %+v\n", server.Name, err)
		}
	}

	toolset, err := cfg.GetToolset(*toolsetFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving toolset: %+v\n", err)
		os.Exit(1)
	}
	active, err := registry.Resolve(toolset.Tools)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving toolset '%s': %+v\n", toolset.Name, err)
		os.Exit(1)
	}
	def.Tools = active

	ctx := context.Background()
	var client llm.LLMClient
	switch cfg.LLMClient {
	case "gemini":
		client, err = llm.NewGeminiLLMClient(ctx, def.Model, def.Instruction)
	case "openai":
		client, err = llm.NewOpenAILLMClient(ctx, def.Model)
	case "anthropic":
		client, err = llm.NewAnthropicLLMClient(ctx, def.Model)
	case "bedrock":
		client, err = llm.NewBedrockLLMClient(ctx, def.Model)
	default:
		client = &llm.MockLLMClient{}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing %s client: %+v\n", cfg.LLMClient, err)
		os.Exit(1)
	}

	bot := agent.New(def, sess, client, opMode, verbosity)

	fmt.Println("Shortbot is ready. Paste the message to shorten, /quit to exit.")
	if err := runREPL(ctx, bot, strings.Join(flag.Args(), " ")); err != nil {
		fmt.Fprintf(os.Stderr, "Agent stopped with an error: %+v\n", err)
		os.Exit(1)
	}
}

// runREPL reads user messages from stdin and prints the agent's responses
// until the user quits or input ends.
func runREPL(ctx context.Context, bot *agent.Agent, initialPrompt string) error {
	reader := bufio.NewReader(os.Stdin)
	callbacks := replCallbacks(bot, reader)

	if initialPrompt != "" {
		fmt.Printf("You: %s\n", initialPrompt)
		if err := bot.ProcessUserInput(ctx, initialPrompt, callbacks); err != nil {
			return err
		}
	}

	for {
		fmt.Print("You: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return nil
		}
		input := strings.TrimSpace(line)
		if input == "/quit" || input == "/exit" {
			return nil
		}
		if input == "" {
			continue
		}
		if err := bot.ProcessUserInput(ctx, input, callbacks); err != nil {
			return err
		}
	}
}

func replCallbacks(bot *agent.Agent, reader *bufio.Reader) agent.ProcessCallbacks {
	return agent.ProcessCallbacks{
		OnAssistantMessage: func(message string) {
			fmt.Printf("Shortbot: %s\n", message)
		},
		OnToolCall: func(toolCall session.ToolCall) {
			switch bot.Verbosity {
			case agent.ToolVerbosityInfo:
				fmt.Printf("[tool] %s\n", toolCall.Name)
			case agent.ToolVerbosityAll:
				fmt.Printf("[tool] %s %v\n", toolCall.Name, toolCall.Args)
			}
		},
		OnToolResult: func(toolCall session.ToolCall, result string) {
			if bot.Verbosity == agent.ToolVerbosityAll {
				fmt.Printf("[tool] %s -> %s\n", toolCall.Name, result)
			}
		},
		ShouldExecuteTool: func(toolCall session.ToolCall) bool {
			fmt.Printf("Run tool '%s'? [y/N]: ", toolCall.Name)
			answer, err := reader.ReadString('\n')
			if err != nil {
				return false
			}
			answer = strings.ToLower(strings.TrimSpace(answer))
			return answer == "y" || answer == "yes"
		},
		OnWarning: func(warning string) {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		},
	}
}

func defaultSessionName() string {
	return fmt.Sprintf("shortbot_%s", time.Now().Format("2006-01-02_15-04-05"))
}
