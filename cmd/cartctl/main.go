// cartctl drives the cart client from the command line: a local cart for
// guests, adoption of the server cart after login, and a push to the
// backend on every mutation.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"junipermart-backend/cartclient"
)

var (
	apiURL  string
	dataDir string
)

func main() {
	root := &cobra.Command{
		Use:          "cartctl",
		Short:        "Manage the local shopping cart and its backend sync",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080", "backend base URL")
	root.PersistentFlags().StringVar(&dataDir, "dir", defaultDir(), "directory for local cart state")
	root.AddCommand(loginCmd(), logoutCmd(), addCmd(), rmCmd(), setCmd(), clearCmd(), showCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, "junipermart")
}

func tokenPath() string {
	return filepath.Join(dataDir, "token")
}

func readToken() string {
	data, err := os.ReadFile(tokenPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// openContainer builds the container for this invocation. If a token is
// stored from a previous login, the server cart is adopted before any
// mutation runs.
func openContainer(cmd *cobra.Command) (*cartclient.Container, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, err
	}
	c := cartclient.NewContainer(cartclient.NewFileStorage(dataDir), cartclient.NewClient(apiURL), nil)
	if tok := readToken(); tok != "" {
		c.SetToken(cmd.Context(), tok)
	}
	return c, nil
}

func printCart(items []cartclient.LineItem) {
	if len(items) == 0 {
		fmt.Println("cart is empty")
		return
	}
	var total float64
	for _, it := range items {
		fmt.Printf("%-24s  %-20s  x%-3d  %8.2f\n", it.ID, it.Name, it.Quantity, it.Price)
		total += it.Price * float64(it.Quantity)
	}
	fmt.Printf("total: %.2f\n", total)
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Log in and adopt the server-held cart",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, _ := json.Marshal(map[string]string{"email": args[0], "password": args[1]})
			resp, err := http.Post(apiURL+"/api/login", "application/json", bytes.NewReader(body))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("login failed: status %d", resp.StatusCode)
			}
			var out struct {
				Token string `json:"token"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return err
			}
			if err := os.MkdirAll(dataDir, 0o700); err != nil {
				return err
			}
			if err := os.WriteFile(tokenPath(), []byte(out.Token), 0o600); err != nil {
				return err
			}
			c, err := openContainer(cmd)
			if err != nil {
				return err
			}
			printCart(c.Items())
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the local cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cartclient.NewContainer(cartclient.NewFileStorage(dataDir), cartclient.NewClient(apiURL), nil)
			c.SetToken(cmd.Context(), "")
			os.Remove(tokenPath())
			fmt.Println("logged out")
			return nil
		},
	}
}

func addCmd() *cobra.Command {
	var name, image string
	var price float64
	cmd := &cobra.Command{
		Use:   "add <productId>",
		Short: "Add a product to the cart (or bump its quantity)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd)
			if err != nil {
				return err
			}
			c.AddToCart(cartclient.LineItem{ID: args[0], Name: name, Price: price, Image: image})
			printCart(c.Items())
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().Float64Var(&price, "price", 0, "unit price")
	cmd.Flags().StringVar(&image, "image", "", "image URL")
	return cmd
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <productId>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd)
			if err != nil {
				return err
			}
			c.RemoveFromCart(args[0])
			printCart(c.Items())
			return nil
		},
	}
}

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <productId> <quantity>",
		Short: "Set the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			c, err := openContainer(cmd)
			if err != nil {
				return err
			}
			c.UpdateQuantity(args[0], qty)
			printCart(c.Items())
			return nil
		},
	}
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd)
			if err != nil {
				return err
			}
			c.ClearCart()
			fmt.Println("cart cleared")
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd)
			if err != nil {
				return err
			}
			printCart(c.Items())
			return nil
		},
	}
}
