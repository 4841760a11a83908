package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/foundation"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/client"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/files"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/requests"
	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

type sendFunc func(ctx context.Context, exec *requests.Executor) (*client.Response, error)

// run builds a container, sends one request and prints the result.
func run(cmd *cobra.Command, o *globalOptions, send sendFunc) error {
	c, err := o.container()
	if err != nil {
		return err
	}
	defer c.Close()

	resp, err := send(cmd.Context(), c.HTTP())
	if err != nil {
		return err
	}

	if err := o.writeResponse(cmd.OutOrStdout(), resp); err != nil {
		return err
	}
	if o.metrics {
		return writeMetrics(cmd.ErrOrStderr(), c)
	}
	return nil
}

func newGetCmd(o *globalOptions) *cobra.Command {
	var query []string
	cmd := &cobra.Command{
		Use:   "get URL",
		Short: "Send a GET request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parsePairs("query", query)
			if err != nil {
				return err
			}
			return run(cmd, o, func(ctx context.Context, exec *requests.Executor) (*client.Response, error) {
				return exec.Get(ctx, args[0], q)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "query parameter key=value (repeatable)")
	return cmd
}

func newDeleteCmd(o *globalOptions) *cobra.Command {
	var query []string
	cmd := &cobra.Command{
		Use:   "delete URL",
		Short: "Send a DELETE request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parsePairs("query", query)
			if err != nil {
				return err
			}
			return run(cmd, o, func(ctx context.Context, exec *requests.Executor) (*client.Response, error) {
				return exec.Delete(ctx, args[0], q)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "query parameter key=value (repeatable)")
	return cmd
}

func newPostCmd(o *globalOptions) *cobra.Command {
	var form []string
	cmd := &cobra.Command{
		Use:   "post URL",
		Short: "Send a url-encoded form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parsePairs("form", form)
			if err != nil {
				return err
			}
			return run(cmd, o, func(ctx context.Context, exec *requests.Executor) (*client.Response, error) {
				return exec.Post(ctx, args[0], f)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&form, "form", "f", nil, "form field key=value (repeatable)")
	return cmd
}

func newJSONCmd(o *globalOptions) *cobra.Command {
	var (
		data   string
		method string
	)
	cmd := &cobra.Command{
		Use:   "json URL",
		Short: "Send a JSON body",
		Long:  "Send a JSON body. --data takes a literal document, or @path to read one from a file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readJSON(data)
			if err != nil {
				return err
			}
			return run(cmd, o, func(ctx context.Context, exec *requests.Executor) (*client.Response, error) {
				switch strings.ToUpper(method) {
				case "POST":
					return exec.JSON(ctx, args[0], body)
				case "PUT":
					return exec.Put(ctx, args[0], body)
				case "PATCH":
					return exec.Patch(ctx, args[0], body)
				default:
					return exec.Request(ctx, method, args[0], client.Options{client.KeyJSON: body})
				}
			})
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "{}", "JSON document or @file")
	cmd.Flags().StringVarP(&method, "method", "X", "POST", "HTTP method")
	return cmd
}

func readJSON(data string) (interface{}, error) {
	raw := []byte(data)
	if path, ok := strings.CutPrefix(data, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read JSON body: %w", err)
		}
		raw = b
	}
	var body interface{}
	if err := sonic.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return body, nil
}

func newUploadCmd(o *globalOptions) *cobra.Command {
	var (
		fileFlags []string
		form      []string
		query     []string
	)
	cmd := &cobra.Command{
		Use:   "upload URL",
		Short: "Send a multipart/form-data body",
		Long:  "Send a multipart/form-data body. --file name=path adds a file part; name[]=path adds to an array field.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFileFields(fileFlags)
			if err != nil {
				return err
			}
			f, err := parsePairs("form", form)
			if err != nil {
				return err
			}
			q, err := parsePairs("query", query)
			if err != nil {
				return err
			}
			return run(cmd, o, func(ctx context.Context, exec *requests.Executor) (*client.Response, error) {
				return exec.Upload(ctx, args[0], q, fields, f)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&fileFlags, "file", "F", nil, "file part name=path (repeatable)")
	cmd.Flags().StringArrayVarP(&form, "form", "f", nil, "form field key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "query parameter key=value (repeatable)")
	return cmd
}

// parseFileFields groups name[]=path flags into list fields, keeping the order
// in which names first appear.
func parseFileFields(flags []string) ([]files.FileField, error) {
	var fields []files.FileField
	lists := map[string]int{}

	for _, raw := range flags {
		name, path, ok := strings.Cut(raw, "=")
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid --file value %q, want name=path", raw)
		}
		list, isList := strings.CutSuffix(name, "[]")
		if !isList {
			fields = append(fields, files.File(name, path))
			continue
		}
		if i, seen := lists[list]; seen {
			fields[i].Paths = append(fields[i].Paths, path)
			continue
		}
		lists[list] = len(fields)
		fields = append(fields, files.FileList(list, path))
	}
	return fields, nil
}

// writeResponse prints the status line and headers, then the body or a note
// about where it was saved.
func (o *globalOptions) writeResponse(w io.Writer, resp *client.Response) error {
	fmt.Fprintf(w, "HTTP %d %s\n", resp.StatusCode, resp.Reason)
	for _, name := range client.SortedKeys(resp.Header) {
		for _, v := range resp.Header[name] {
			fmt.Fprintf(w, "%s: %s\n", name, v)
		}
	}
	fmt.Fprintln(w)

	if o.output != "" {
		n, err := files.Save(resp, o.output, true)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "saved %d bytes to %s\n", n, o.output)
		return err
	}

	_, err := w.Write(resp.Body.Bytes())
	if err == nil && resp.Body.Len() > 0 && !strings.HasSuffix(resp.Body.String(), "\n") {
		_, err = fmt.Fprintln(w)
	}
	return err
}

func writeMetrics(w io.Writer, c *foundation.Container) error {
	text, err := monitoring.Exposition(c.Metrics().Registry())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}
