package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nickyhof/MemDB"
	"github.com/nickyhof/MemDB/core"
	"github.com/nickyhof/MemDB/db"
	"github.com/nickyhof/MemDB/op"
)

const (
	PromptColor  = "\033[36m" // Cyan
	ErrorColor   = "\033[31m" // Red
	SuccessColor = "\033[32m" // Green
	ResetColor   = "\033[0m"
	BoldColor    = "\033[1m"
)

// Version is set at build time via -ldflags
var Version = "dev"

// demoStatements is the classic create, query, update, delete and join
// session.
var demoStatements = []string{
	`CREATE TABLE users (id, name);`,
	`INSERT INTO users VALUES (1, "Alice");`,
	`INSERT INTO users VALUES (2, "Bob");`,
	`CREATE TABLE orders (id, user_id, product);`,
	`INSERT INTO orders VALUES (1, 1, "Book");`,
	`INSERT INTO orders VALUES (2, 2, "Pen");`,
	`INSERT INTO orders VALUES (3, 1, "Notebook");`,
	`SELECT id, name FROM users;`,
	`SELECT * FROM users WHERE name = "Alice";`,
	`SELECT id FROM users WHERE name = "Bob";`,
	`UPDATE users SET name = "Charlie" WHERE id = 2;`,
	`DELETE FROM users WHERE name = "Alice";`,
	`SELECT users.id, orders.product FROM users JOIN orders ON users.id = orders.user_id;`,
}

// CLI holds the CLI state
type CLI struct {
	engine      *db.Engine
	catalog     *op.CatalogOp
	s3          *db.S3Config
	out         io.Writer
	history     []string
	historyFile string
}

func main() {
	sqlFile := flag.String("sqlFile", "", "SQL script to execute (local path, file://, http(s):// or s3://)")
	demo := flag.Bool("demo", false, "Run the built-in demo session and exit")
	userName := flag.String("name", "MemDB", "Author name for journal entries")
	userEmail := flag.String("email", "cli@memdb.local", "Author email for journal entries")
	journaled := flag.Bool("journal", true, "Record every change in the in-memory journal")
	s3Region := flag.String("s3Region", "", "S3 region for s3:// paths")
	s3Endpoint := flag.String("s3Endpoint", "", "Custom S3-compatible endpoint")
	s3AccessKey := flag.String("s3AccessKey", "", "S3 access key (defaults to the AWS credential chain)")
	s3SecretKey := flag.String("s3SecretKey", "", "S3 secret key (defaults to the AWS credential chain)")
	flag.Parse()

	printBanner()

	instance, err := MemDB.OpenMemory(*journaled)
	if err != nil {
		fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(1)
	}
	if *journaled {
		fmt.Printf("%sJournal enabled%s\n", SuccessColor, ResetColor)
	}

	cli := newCLI(instance, core.Identity{Name: *userName, Email: *userEmail}, os.Stdout)
	cli.historyFile = getHistoryPath()
	cli.s3 = &db.S3Config{
		AccessKey: *s3AccessKey,
		SecretKey: *s3SecretKey,
		Region:    *s3Region,
		Endpoint:  *s3Endpoint,
	}
	cli.loadHistory()

	if *demo {
		cli.runDemo()
		return
	}

	if *sqlFile != "" {
		if err := cli.importFile(*sqlFile); err != nil {
			fmt.Printf("%sError importing file: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
		return
	}

	cli.run(os.Stdin)
}

func newCLI(instance *MemDB.Instance, identity core.Identity, out io.Writer) *CLI {
	return &CLI{
		engine:  instance.Engine(identity),
		catalog: op.GetCatalog(instance.Store, instance.Journal),
		out:     out,
		history: make([]string, 0),
	}
}

func printBanner() {
	fmt.Println()
	bannerWidth := 39 // inner width of the banner box
	versionLine := fmt.Sprintf("MemDB v%s", Version)
	padding := max(bannerWidth-len(versionLine)-2, 0)
	leftPad := padding / 2
	rightPad := padding - leftPad

	fmt.Printf("%s%s╔═══════════════════════════════════════╗%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s║ %*s%s%*s ║%s\n", BoldColor, PromptColor, leftPad, "", versionLine, rightPad, "", ResetColor)
	fmt.Printf("%s%s║     In-memory SQL table store         ║%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s╚═══════════════════════════════════════╝%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Println()
	fmt.Println("Type .help for commands, .quit to exit")
	fmt.Println()
}

func (cli *CLI) printf(format string, args ...any) {
	fmt.Fprintf(cli.out, format, args...)
}

func (cli *CLI) errorf(format string, args ...any) {
	cli.printf("%s✗ "+format+"%s\n", append(append([]any{ErrorColor}, args...), ResetColor)...)
}

func (cli *CLI) run(in io.Reader) {
	reader := bufio.NewReader(in)
	var multiLineBuffer strings.Builder

	for {
		fmt.Fprint(cli.out, cli.getPrompt(multiLineBuffer.Len() > 0))

		// the last line may arrive together with io.EOF
		input, err := reader.ReadString('\n')
		if input != "" && !cli.handleInput(input, &multiLineBuffer) {
			cli.saveHistory()
			return
		}

		if err != nil {
			if pending := strings.TrimSpace(multiLineBuffer.String()); pending != "" {
				cli.addToHistory(pending)
				cli.execute(pending)
			}
			cli.printf("\n%sGoodbye!%s\n", SuccessColor, ResetColor)
			cli.saveHistory()
			return
		}
	}
}

// handleInput processes one line of input, accumulating statements in
// buffer until they end with ;. It returns false when the CLI should exit.
func (cli *CLI) handleInput(input string, buffer *strings.Builder) bool {
	input = strings.TrimSuffix(input, "\n")
	input = strings.TrimSuffix(input, "\r")

	if strings.TrimSpace(input) == "" {
		return true
	}

	if buffer.Len() == 0 && strings.HasPrefix(input, ".") {
		return cli.handleCommand(input)
	}

	buffer.WriteString(input)
	trimmed := strings.TrimSpace(buffer.String())
	if !strings.HasSuffix(trimmed, ";") {
		buffer.WriteString(" ")
		return true
	}
	buffer.Reset()

	if strings.TrimSpace(strings.TrimSuffix(trimmed, ";")) == "" {
		return true
	}

	cli.addToHistory(trimmed)
	cli.execute(trimmed)
	return true
}

func (cli *CLI) execute(statement string) {
	result, err := cli.engine.Execute(statement)
	if err != nil {
		cli.errorf("Error: %v", err)
		return
	}
	result.DisplayTo(cli.out)
}

func (cli *CLI) getPrompt(multiLine bool) string {
	if multiLine {
		return fmt.Sprintf("%s  ...>%s ", PromptColor, ResetColor)
	}
	return fmt.Sprintf("%smemdb>%s ", PromptColor, ResetColor)
}

// handleCommand runs a dot command. It returns false when the CLI should
// exit.
func (cli *CLI) handleCommand(input string) bool {
	parts := strings.Fields(strings.TrimSpace(input))
	if len(parts) == 0 {
		return true
	}

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit", ".q":
		cli.printf("%sGoodbye!%s\n", SuccessColor, ResetColor)
		return false

	case ".help", ".h", ".?":
		cli.printHelp()

	case ".tables":
		cli.showTables()

	case ".show":
		if len(parts) != 2 {
			cli.errorf("Usage: .show <table>")
			break
		}
		cli.showTable(parts[1])

	case ".clear", ".cls":
		cli.printf("\033[H\033[2J")

	case ".history":
		cli.printHistory()

	case ".version":
		cli.printf("MemDB version %s\n", Version)

	case ".import":
		if len(parts) != 2 {
			cli.errorf("Usage: .import <file.sql|url>")
			break
		}
		if err := cli.importFile(parts[1]); err != nil {
			cli.errorf("Error: %v", err)
		}

	case ".export":
		if len(parts) != 3 {
			cli.errorf("Usage: .export <table> <path|s3://bucket/key>")
			break
		}
		cli.exportTable(parts[1], parts[2])

	case ".log":
		cli.showLog()

	case ".asof":
		if len(parts) != 3 {
			cli.errorf("Usage: .asof <transaction> <table>")
			break
		}
		cli.showTableAsOf(parts[1], parts[2])

	case ".demo":
		cli.runDemo()

	default:
		cli.errorf("Unknown command: %s (type .help for commands)", parts[0])
	}

	return true
}

func (cli *CLI) printHelp() {
	cli.printf("\n%s%sSpecial Commands:%s\n", BoldColor, PromptColor, ResetColor)
	for _, line := range []string{
		"  .help, .h              Show this help message",
		"  .quit, .exit           Exit the CLI",
		"  .tables                List all tables",
		"  .show <table>          Print a table",
		"  .import <file|url>     Execute SQL statements from a file, http(s):// or s3:// URL",
		"  .export <table> <path> Write a table to a file or s3:// URL",
		"  .log                   Show the journal, newest first",
		"  .asof <txn> <table>    Print a table as it was after a journal entry",
		"  .demo                  Run the demo session",
		"  .history               Show command history",
		"  .clear                 Clear the screen",
		"  .version               Show version info",
	} {
		cli.printf("%s\n", line)
	}
	cli.printf("\n%s%sSQL Commands:%s\n", BoldColor, PromptColor, ResetColor)
	for _, line := range []string{
		"  CREATE TABLE <table> (<column>, ...);",
		"  INSERT INTO <table> VALUES (<value>, ...);",
		"  SELECT <cols>|*|COUNT(*) FROM <table> [WHERE <col> = <val>] [GROUP BY <col>]",
		"         [HAVING <col> = <val>] [ORDER BY <col> [ASC|DESC]] [LIMIT n];",
		"  SELECT <cols> FROM <t1> JOIN <t2> ON <t1>.<col> = <t2>.<col> [WHERE ...];",
		"  UPDATE <table> SET <col> = <val> WHERE <col> = <val>;",
		"  DELETE FROM <table> WHERE <col> = <val>;",
	} {
		cli.printf("%s\n", line)
	}
	cli.printf("\n")
}

func (cli *CLI) showTables() {
	names := cli.catalog.TableNames()
	if len(names) == 0 {
		cli.printf("No tables\n")
		return
	}
	table := db.NewTable(cli.out)
	table.Header([]string{"table", "rows"})
	for _, name := range names {
		n, _ := cli.catalog.Store.Len(name)
		table.Row([]string{name, fmt.Sprint(n)})
	}
	table.Render()
}

func (cli *CLI) showTable(name string) {
	rendered, err := cli.catalog.Store.Render(name)
	if err != nil {
		cli.errorf("Error: %v", err)
		return
	}
	cli.printf("%s\n", rendered)
}

func (cli *CLI) showLog() {
	history, err := cli.catalog.History()
	if err != nil {
		cli.errorf("Error: %v", err)
		return
	}
	if len(history) == 0 {
		cli.printf("No transactions\n")
		return
	}

	table := db.NewTable(cli.out)
	table.Header([]string{"txn", "when", "author", "statement"})
	for _, txn := range history {
		table.Row([]string{txn.Short(), txn.When.Format("15:04:05"), txn.Author, truncate(txn.Message, 60)})
	}
	table.Render()
}

func (cli *CLI) showTableAsOf(txn, name string) {
	tableOp, err := op.GetTable(name, cli.catalog.Store, cli.catalog.Journal)
	if err != nil {
		// the table may have existed only in the past; the journal decides
		tableOp = &op.TableOp{Table: core.Table{Name: name}, Store: cli.catalog.Store, Journal: cli.catalog.Journal}
	}

	rows, err := tableOp.AsOf(txn)
	if err != nil {
		cli.errorf("Error: %v", err)
		return
	}

	result := db.QueryResult{Rows: rows, RecordsRead: len(rows)}
	if len(rows) > 0 {
		result.Columns = rows[0].Columns
	}
	result.DisplayTo(cli.out)
}

func (cli *CLI) exportTable(name, path string) {
	n, err := cli.engine.ExportTable(context.Background(), name, path, cli.s3)
	if err != nil {
		cli.errorf("Error: %v", err)
		return
	}
	cli.printf("%s✓ Exported %s to %s (%d bytes)%s\n", SuccessColor, name, path, n, ResetColor)
}

// runDemo executes the demo statements, printing each result.
func (cli *CLI) runDemo() {
	for _, statement := range demoStatements {
		cli.printf("\n%s%s%s\n", BoldColor, statement, ResetColor)
		cli.execute(statement)
	}
}

func (cli *CLI) addToHistory(cmd string) {
	if len(cli.history) > 0 && cli.history[len(cli.history)-1] == cmd {
		return
	}
	cli.history = append(cli.history, cmd)

	if len(cli.history) > 1000 {
		cli.history = cli.history[len(cli.history)-1000:]
	}
}

func (cli *CLI) printHistory() {
	if len(cli.history) == 0 {
		cli.printf("No command history\n")
		return
	}

	start := max(len(cli.history)-20, 0)
	for i := start; i < len(cli.history); i++ {
		cli.printf("  %3d  %s\n", i+1, cli.history[i])
	}
}

func getHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".memdb_history")
}

func (cli *CLI) loadHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Open(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		cli.history = append(cli.history, scanner.Text())
	}
}

func (cli *CLI) saveHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Create(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	start := max(len(cli.history)-1000, 0)
	for i := start; i < len(cli.history); i++ {
		_, _ = file.WriteString(cli.history[i] + "\n")
	}
}

// importFile reads a script and executes every statement, reporting each
// outcome on one line.
func (cli *CLI) importFile(path string) error {
	outcomes, err := cli.engine.ImportScript(context.Background(), path, cli.s3)
	if err != nil {
		return err
	}

	successCount := 0
	errorCount := 0

	for i, outcome := range outcomes {
		if outcome.Err != nil {
			cli.printf("%s[%d] ✗ %s%s\n", ErrorColor, i+1, truncate(outcome.Statement, 50), ResetColor)
			cli.printf("      Error: %v\n", outcome.Err)
			errorCount++
			continue
		}

		successCount++
		switch r := outcome.Result.(type) {
		case db.CommitResult:
			var details []string
			if r.TablesCreated > 0 {
				details = append(details, fmt.Sprintf("%d table created", r.TablesCreated))
			}
			if r.RecordsWritten > 0 {
				details = append(details, fmt.Sprintf("%d written", r.RecordsWritten))
			}
			if r.RecordsUpdated > 0 {
				details = append(details, fmt.Sprintf("%d updated", r.RecordsUpdated))
			}
			if r.RecordsDeleted > 0 {
				details = append(details, fmt.Sprintf("%d deleted", r.RecordsDeleted))
			}
			detailStr := ""
			if len(details) > 0 {
				detailStr = " (" + strings.Join(details, ", ") + ")"
			}
			cli.printf("%s[%d] ✓ %s%s%s\n", SuccessColor, i+1, truncate(outcome.Statement, 50), detailStr, ResetColor)
		case db.QueryResult:
			cli.printf("%s[%d] ✓ %s (%d rows)%s\n", SuccessColor, i+1, truncate(outcome.Statement, 50), len(r.Rows), ResetColor)
		default:
			cli.printf("%s[%d] ✓ %s%s\n", SuccessColor, i+1, truncate(outcome.Statement, 50), ResetColor)
		}
	}

	cli.printf("\n%s✓ Import complete: %d succeeded, %d failed%s\n",
		SuccessColor, successCount, errorCount, ResetColor)

	return nil
}

// truncate shortens a string to max length with ellipsis
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
